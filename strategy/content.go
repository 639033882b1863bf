package strategy

import (
	"context"

	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/similarity"
)

// Content 是基于内容的策略（Content-Based）。
//
// 算法流程：
//  1. 目录全量物品的 TF-IDF 向量在快照构建时已经就绪（见 Corpus）
//  2. 用户口味向量 = 用户交互过的物品向量按亲和权重缩放后求和
//  3. 对未交互物品计算口味向量与物品向量的余弦相似度
//
// 冷启动补充：窗口内没有交互的用户无法合成口味向量；若配置了 Profiles
// （如 Feast 画像源），则以外部长期兴趣向量代替。画像拉取失败视为无画像，
// 策略返回空列表，不阻塞其他策略。
type Content struct {
	Snap *Snapshot

	// Profiles 可选的外部画像源，仅用于冷启动
	Profiles core.ProfileSource
}

func (s *Content) Name() string { return core.AlgorithmContentBased }

func (s *Content) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if s.Snap == nil || s.Snap.Corpus == nil || userID == "" {
		return nil, nil
	}

	target := s.Snap.Matrix.UserItems(userID)
	profile := s.Snap.Corpus.UserProfile(target)
	if len(profile) == 0 && s.Profiles != nil {
		if p, err := s.Profiles.TasteProfile(ctx, userID); err == nil {
			profile = p
		}
	}
	if len(profile) == 0 {
		return nil, nil
	}

	out := make([]*core.Item, 0)
	for itemID, vec := range s.Snap.Corpus.Vectors {
		if _, seen := target[itemID]; seen {
			continue
		}
		// 空向量（无文本的物品）余弦恒为 0，自然不会出现在结果里
		score := similarity.Cosine(profile, vec)
		if score > 0 {
			out = append(out, newResult(itemID, score, s.Name(), ReasonContent))
		}
	}
	core.SortByScore(out)
	return core.Truncate(out, topN), nil
}
