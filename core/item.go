package core

import (
	"sort"

	"github.com/rushteam/personakit/pkg/utils"
)

// Item 是推荐链路中的统一承载结构：候选物品的分数、理由、策略归属与标签。
// Reason 面向用户展示；Strategy 标记产出该结果的策略；Labels 用于 explain / 观测。
type Item struct {
	ID       string
	Score    float64
	Reason   string
	Strategy string
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// SortByScore 按分数降序排序；同分时按物品 ID 升序，保证相同输入下输出顺序稳定。
// 所有策略和混合融合都必须经过这里，推荐列表才能做到可复现。
func SortByScore(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}

// Truncate 截取前 n 个物品。n <= 0 或物品数不足时原样返回。
func Truncate(items []*Item, n int) []*Item {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
