package feast

import (
	"context"
	"strings"

	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/pkg/conv"
)

// ProfileSource 把 Feast 在线特征转成用户口味画像，供内容策略在
// 冷启动时使用。
//
// 约定：每个配置的特征是离线训练产出的"用户对某主题词的兴趣分"，
// 特征名形如 "user_taste:coffee"，冒号后的短名即主题词。
// 数值非正或缺失的特征不进入画像。
type ProfileSource struct {
	Client Client

	// Features 要读取的特征名列表
	Features []string

	// EntityKey 实体键名，默认 "user_id"
	EntityKey string

	// Project 项目名称（可选，覆盖 Client 默认值）
	Project string
}

func (s *ProfileSource) Name() string { return "feast" }

// TasteProfile 读取该用户的兴趣特征并转成 词 → 权重 映射。
// 用户在特征库中不存在时返回空画像，不是错误。
func (s *ProfileSource) TasteProfile(ctx context.Context, userID string) (map[string]float64, error) {
	if s.Client == nil || len(s.Features) == 0 {
		return nil, nil
	}
	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = "user_id"
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   s.Features,
		EntityRows: []map[string]interface{}{{entityKey: userID}},
		Project:    s.Project,
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable,
			"feast: taste profile fetch failed: "+err.Error())
	}
	if len(resp.FeatureVectors) == 0 {
		return nil, nil
	}

	// 特征库可能给回 int64/float32 等数值类型，统一收敛成 float64；
	// 非数值特征直接丢弃
	values := conv.MapToFloat64(resp.FeatureVectors[0].Values)
	profile := make(map[string]float64)
	for name, w := range values {
		if w <= 0 {
			continue
		}
		profile[termFromFeature(name)] = w
	}
	return profile, nil
}

// termFromFeature 取特征名冒号后的短名："user_taste:coffee" → "coffee"。
func termFromFeature(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

var _ core.ProfileSource = (*ProfileSource)(nil)
