// Package engine 是推荐系统的入口：编排数据源、窗口快照、策略、过滤与缓存。
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/personakit/cache"
	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/filter"
	"github.com/rushteam/personakit/hybrid"
	"github.com/rushteam/personakit/strategy"
)

// 引擎默认参数。
const (
	DefaultWindowDays     = 30
	DefaultTopN           = 10
	DefaultSnapshotTTL    = 10 * time.Minute
	DefaultRequestTimeout = 3 * time.Second
)

// Config 是引擎的行为参数，零值字段取默认。
type Config struct {
	// WindowDays 交互数据的时间窗口（最近 N 天）
	WindowDays int

	// SnapshotTTL 窗口快照的复用时长，过期后下一个请求触发重建
	SnapshotTTL time.Duration

	// NeighborK 用户协同过滤的邻居数上限
	NeighborK int

	// ItemNeighborK 物品邻居表每个物品保留的邻居数上限
	ItemNeighborK int

	// MaxEventWeight 单次交互事件的权重上限（防刷）
	MaxEventWeight float64

	// DefaultTopN 请求未指定 TopN 时的结果数
	DefaultTopN int

	// Weights 混合融合权重
	Weights hybrid.Weights

	// RequestTimeout 单次推荐请求的总预算
	RequestTimeout time.Duration
}

// Engine 对外提供 GetRecommendations。
//
// 依赖全部显式注入：数据源、缓存、过滤器、冷启动画像源都是字段，
// 不做全局状态。Engine 构造完成后并发安全。
type Engine struct {
	Interactions core.InteractionSource
	Catalog      core.CatalogSource
	Cache        *cache.RecommendationCache
	Filters      []filter.Filter
	Profiles     core.ProfileSource
	Config       Config
	Logger       zerolog.Logger

	snap  atomicSnapshot
	group singleflight.Group
}

// New 返回装配好的引擎。可选依赖（Cache/Filters/Profiles/Catalog）直接改字段。
func New(interactions core.InteractionSource, catalog core.CatalogSource, cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{
		Interactions: interactions,
		Catalog:      catalog,
		Config:       cfg,
		Logger:       logger,
	}
}

// GetRecommendations 为用户计算个性化推荐。
//
// 错误约定：
//   - 调用方误用（负 TopN、未知算法、缺数据源）→ INVALID_INPUT，直接返回错误
//   - 数据源不可用 → 记日志，返回空列表和 nil error（调用方展示非个性化默认）
//   - 信号不足（新用户等）→ 空列表，不是错误
func (e *Engine) GetRecommendations(ctx context.Context, userID string, opts core.Options) ([]*core.Item, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: user id is empty")
	}
	if opts.TopN < 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("engine: negative topN %d", opts.TopN))
	}
	if !core.ValidAlgorithm(opts.Algorithm) {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("engine: unknown algorithm %q", opts.Algorithm))
	}
	if e.Interactions == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: interaction source not configured")
	}

	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = core.AlgorithmHybrid
	}
	topN := opts.TopN
	if topN == 0 {
		topN = e.Config.DefaultTopN
	}
	if topN == 0 {
		topN = DefaultTopN
	}

	timeout := e.Config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if opts.UseCache {
		if items, ok := e.Cache.Retrieve(ctx, userID, opts.Context, algorithm); ok {
			return items, nil
		}
	}

	snap, err := e.snapshot(ctx)
	if err != nil {
		// 数据层故障降级为空结果，调用方无需区分
		e.Logger.Error().Err(err).Str("user_id", userID).Msg("snapshot unavailable, serving empty recommendations")
		return []*core.Item{}, nil
	}

	s := e.buildStrategy(algorithm, snap)
	items, err := s.Recommend(ctx, userID, topN)
	if err != nil {
		if core.IsInvalidInput(err) {
			return nil, err
		}
		e.Logger.Error().Err(err).Str("user_id", userID).Str("algorithm", algorithm).
			Msg("strategy failed, serving empty recommendations")
		return []*core.Item{}, nil
	}

	items = filter.Apply(ctx, e.Filters, items, snap.Items)

	// 空结果不回写：冷启动用户的下一次请求不该被空缓存挡住
	if opts.UseCache && len(items) > 0 {
		e.Cache.Store(ctx, userID, opts.Context, algorithm, items)
	}
	return items, nil
}

func (e *Engine) buildStrategy(algorithm string, snap *strategy.Snapshot) strategy.Strategy {
	userCF := &strategy.UserBasedCF{Snap: snap, K: e.Config.NeighborK}
	itemCF := &strategy.ItemBasedCF{Snap: snap}
	content := &strategy.Content{Snap: snap, Profiles: e.Profiles}

	switch algorithm {
	case core.AlgorithmUserBased:
		return userCF
	case core.AlgorithmItemBased:
		return itemCF
	case core.AlgorithmContentBased:
		return content
	default:
		weights := e.Config.Weights
		if weights == (hybrid.Weights{}) {
			weights = hybrid.DefaultWeights()
		}
		return hybrid.NewCombiner(userCF, itemCF, content, weights, e.Logger)
	}
}

// RefreshSnapshot 强制重建窗口快照（交互数据批量导入后调用）。
func (e *Engine) RefreshSnapshot(ctx context.Context) error {
	e.snap.store(nil)
	_, err := e.snapshot(ctx)
	return err
}

// snapshot 返回当前有效的窗口快照，必要时重建。
// 重建经过 singleflight 合并：快照过期瞬间涌入的并发请求只触发一次
// O(items²) 的构建，其余请求等待同一份结果。
func (e *Engine) snapshot(ctx context.Context) (*strategy.Snapshot, error) {
	ttl := e.Config.SnapshotTTL
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	if snap := e.snap.load(); snap != nil && time.Since(snap.BuiltAt) < ttl {
		return snap, nil
	}

	v, err, _ := e.group.Do("snapshot", func() (any, error) {
		// 拿到执行权后再查一次，落败的并发重建方直接复用
		if snap := e.snap.load(); snap != nil && time.Since(snap.BuiltAt) < ttl {
			return snap, nil
		}

		windowDays := e.Config.WindowDays
		if windowDays <= 0 {
			windowDays = DefaultWindowDays
		}
		events, err := e.Interactions.FetchInteractions(ctx, windowDays)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeUnavailable,
				fmt.Sprintf("source: fetch interactions: %v", err))
		}

		var descriptors []core.ItemDescriptor
		if e.Catalog != nil {
			descriptors, err = e.Catalog.FetchItemDescriptors(ctx)
			if err != nil {
				// 目录失联只瘸内容策略，协同过滤照常
				e.Logger.Warn().Err(err).Msg("catalog unavailable, content strategy degraded")
				descriptors = nil
			}
		}

		snap := strategy.BuildSnapshot(events, descriptors, strategy.SnapshotConfig{
			MaxEventWeight: e.Config.MaxEventWeight,
			ItemNeighborK:  e.Config.ItemNeighborK,
		})
		e.snap.store(snap)
		e.Logger.Info().
			Int("events", len(events)).
			Int("items", len(snap.ItemUsers)).
			Int("users", len(snap.Matrix)).
			Msg("snapshot rebuilt")
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*strategy.Snapshot), nil
}
