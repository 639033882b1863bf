// Package strategy 实现可互换的排序策略：用户协同过滤、物品协同过滤、内容匹配。
//
// 三个策略共享同一份窗口快照（Snapshot），各自独立、无共享可变状态，
// 可以被混合融合层并发执行。每个策略都在累加阶段就跳过用户已交互的物品
// ——排除是每个策略自己的责任，不是事后过滤，否则归一化分母会被污染。
package strategy

import (
	"context"

	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/pkg/utils"
)

// 各策略的推荐理由文案，外部 UI 直接展示。
const (
	ReasonUserBased = "based on similar users' preferences"
	ReasonItemBased = "based on items similar to those you've interacted with"
	ReasonContent   = "based on your interests"
)

// Strategy 是排序策略的统一接口。
//
// 约定：
//   - 信号不足（冷启动、无正相似邻居）返回空列表，不是错误；
//     调用方据此回退到其他策略或非个性化默认
//   - 返回列表按分数降序、同分按 ID 升序，长度不超过 topN
//   - 用户已交互的物品绝不出现在结果中
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error)
}

// newResult 构造一个带策略归属的结果项。
func newResult(itemID string, score float64, name, reason string) *core.Item {
	it := core.NewItem(itemID)
	it.Score = score
	it.Strategy = name
	it.Reason = reason
	it.PutLabel("strategy", utils.NewLabel(name, "strategy"))
	return it
}
