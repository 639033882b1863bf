// Package filter 提供推荐结果的后置过滤。
package filter

import (
	"context"

	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/pkg/utils"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
// desc 是物品的目录元数据，目录里没有该物品时为零值。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, item *core.Item, desc core.ItemDescriptor) (bool, error)
}

// Apply 依次对每个物品跑所有过滤器，任何一个返回 true 即移除。
// 过滤器自身出错时不中断流程，该过滤器对这个物品视为不命中。
func Apply(ctx context.Context, filters []Filter, items []*core.Item, catalog map[string]core.ItemDescriptor) []*core.Item {
	if len(filters) == 0 || len(items) == 0 {
		return items
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		desc := catalog[item.ID]

		shouldFilter := false
		filterReason := ""
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, item, desc)
			if err != nil {
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			item.PutLabel("filtered", utils.Label{
				Value:  "true",
				Source: filterReason,
			})
			continue
		}
		out = append(out, item)
	}
	return out
}
