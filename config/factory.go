package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/personakit/cache"
	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/engine"
	"github.com/rushteam/personakit/filter"
	"github.com/rushteam/personakit/pkg/conv"
	"github.com/rushteam/personakit/store"
)

// FilterBuilder 根据 params 构建一个过滤器。
type FilterBuilder func(name string, params map[string]any) (filter.Filter, error)

var (
	filterBuilders   = make(map[string]FilterBuilder)
	filterBuildersMu sync.RWMutex
)

// RegisterFilter 注册一种过滤器的构建逻辑，供配置驱动使用。
// 外部自定义过滤器在 init 中调用即可。
func RegisterFilter(typeName string, builder FilterBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	filterBuildersMu.Lock()
	defer filterBuildersMu.Unlock()
	filterBuilders[typeName] = builder
}

// SupportedFilterTypes 返回当前已注册的过滤器类型列表（排序），用于错误提示。
func SupportedFilterTypes() []string {
	filterBuildersMu.RLock()
	defer filterBuildersMu.RUnlock()
	types := make([]string, 0, len(filterBuilders))
	for t := range filterBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func init() {
	RegisterFilter("filter.rule", func(name string, params map[string]any) (filter.Filter, error) {
		expr := conv.ConfigGet[string](params, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("filter.rule: expr not set")
		}
		return filter.NewRuleFilter(name, expr)
	})
	RegisterFilter("filter.min_score", func(name string, params map[string]any) (filter.Filter, error) {
		// YAML 里 threshold: 1 解析成 int，threshold: 0.5 解析成 float64，
		// 统一经 conv 收敛
		threshold := conv.ConfigGetFloat64(params, "threshold", 0)
		if threshold <= 0 {
			return nil, fmt.Errorf("filter.min_score: threshold must be positive")
		}
		return filter.NewMinScoreFilter(threshold), nil
	})
	RegisterFilter("filter.blacklist", func(name string, params map[string]any) (filter.Filter, error) {
		ids := make([]string, 0)
		if raw, ok := params["item_ids"].([]any); ok {
			for _, v := range raw {
				if s, ok := v.(string); ok {
					ids = append(ids, s)
				}
			}
		}
		return filter.NewBlacklistFilter(ids, nil, ""), nil
	})
}

// BuildFilters 按配置构建过滤器链，遇到未注册类型时报错并列出已支持类型。
func BuildFilters(cfgs []FilterConfig) ([]filter.Filter, error) {
	filters := make([]filter.Filter, 0, len(cfgs))
	for _, fc := range cfgs {
		filterBuildersMu.RLock()
		builder, ok := filterBuilders[fc.Type]
		filterBuildersMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("unsupported filter type %q (supported: %v)", fc.Type, SupportedFilterTypes())
		}
		f, err := builder(fc.Name, fc.Params)
		if err != nil {
			return nil, fmt.Errorf("build filter %q: %w", fc.Type, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// BuildStore 按配置构建缓存后端；Backend 为空返回 nil（不启用缓存）。
func BuildStore(cfg CacheConfig) (core.Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(cfg.Addr, cfg.DB)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// Assemble 按配置文件装配一个完整引擎。数据源与日志由调用方注入，
// 缓存后端与过滤器链由配置决定。
func Assemble(f *File, interactions core.InteractionSource, catalog core.CatalogSource, logger zerolog.Logger) (*engine.Engine, error) {
	e := engine.New(interactions, catalog, f.Engine.Runtime(), logger)

	backend, err := BuildStore(f.Cache)
	if err != nil {
		return nil, err
	}
	if backend != nil {
		ttl := time.Duration(f.Cache.TTLSeconds) * time.Second
		c := cache.New(backend, ttl, logger)
		c.KeyPrefix = f.Cache.KeyPrefix
		e.Cache = c
	}

	filters, err := BuildFilters(f.Filters)
	if err != nil {
		return nil, err
	}
	e.Filters = filters
	return e, nil
}
