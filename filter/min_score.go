package filter

import (
	"context"

	"github.com/rushteam/personakit/core"
)

// MinScoreFilter 过滤掉分数低于阈值的物品：分数贴近 0 的候选通常是
// 极弱信号（单个远邻居、一两个共享 term），展示出去反而伤体验。
// Threshold <= 0 时不过滤任何物品。
type MinScoreFilter struct {
	Threshold float64
}

func NewMinScoreFilter(threshold float64) *MinScoreFilter {
	return &MinScoreFilter{Threshold: threshold}
}

func (f *MinScoreFilter) Name() string {
	return "filter.min_score"
}

func (f *MinScoreFilter) ShouldFilter(ctx context.Context, item *core.Item, _ core.ItemDescriptor) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Threshold <= 0 {
		return false, nil
	}
	return item.Score < f.Threshold, nil
}

var _ Filter = (*MinScoreFilter)(nil)
