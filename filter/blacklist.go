package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/personakit/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品。
// 名单可以静态配置在内存里，也可以挂一个 Store 动态读取
// （Store 中的值是 JSON 编码的物品 ID 数组）。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单物品 ID 列表
	ItemIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

func NewBlacklistFilter(itemIDs []string, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, item *core.Item, _ core.ItemDescriptor) (bool, error) {
	if item == nil {
		return true, nil
	}

	// 从内存列表检查
	for _, id := range f.ItemIDs {
		if item.ID == id {
			return true, nil
		}
	}

	// 从 Store 检查；名单读不到时不拦截
	if f.Store != nil && f.Key != "" {
		data, err := f.Store.Get(ctx, f.Key)
		if err != nil {
			return false, nil
		}
		var blacklist []string
		if err := json.Unmarshal(data, &blacklist); err != nil {
			return false, nil
		}
		for _, id := range blacklist {
			if item.ID == id {
				return true, nil
			}
		}
	}

	return false, nil
}
