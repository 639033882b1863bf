// Package hybrid 把多个策略的输出融合成单一排序列表。
package hybrid

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/strategy"
)

// Weights 是各策略在融合中的权重。
// 默认 0.4/0.4/0.2：协同信号通常比单纯的内容相似更有预测力，
// 内容策略主要作为冷启动补充。
type Weights struct {
	UserBased    float64 `yaml:"user_based"`
	ItemBased    float64 `yaml:"item_based"`
	ContentBased float64 `yaml:"content_based"`
}

// DefaultWeights 返回默认融合权重。
func DefaultWeights() Weights {
	return Weights{UserBased: 0.4, ItemBased: 0.4, ContentBased: 0.2}
}

// Arm 是融合中的一路策略及其权重。
type Arm struct {
	Strategy strategy.Strategy
	Weight   float64
}

// DefaultOverfetch 是每路策略的候选放大倍数：融合阶段需要比最终 topN
// 更多的原料，否则各路 Top-N 交集太小时融合没有意义。
const DefaultOverfetch = 2

// Combiner 并发执行所有策略并做加权线性融合。
//
// 并发模型是 fan-out/fan-in：各路之间无共享可变状态，某一路失败不会
// 中止其他路——失败的策略降级为贡献零候选（记日志，不致命）。
//
// 融合规则：combined(item) = Σ weight_i × score_i，某路没有给出该物品时
// 该路贡献 0（容忍部分覆盖，不要求三路都有意见）。
// Reason 取贡献最大的那一路的文案，不做拼接。
type Combiner struct {
	Arms   []Arm
	Logger zerolog.Logger

	// Overfetch 候选放大倍数；<= 0 时使用 DefaultOverfetch
	Overfetch int
}

// NewCombiner 以标准三路（用户协同/物品协同/内容）构造融合器。
func NewCombiner(user, item, content strategy.Strategy, w Weights, logger zerolog.Logger) *Combiner {
	return &Combiner{
		Arms: []Arm{
			{Strategy: user, Weight: w.UserBased},
			{Strategy: item, Weight: w.ItemBased},
			{Strategy: content, Weight: w.ContentBased},
		},
		Logger: logger,
	}
}

func (c *Combiner) Name() string { return core.AlgorithmHybrid }

func (c *Combiner) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if len(c.Arms) == 0 {
		return nil, nil
	}

	overfetch := c.Overfetch
	if overfetch <= 0 {
		overfetch = DefaultOverfetch
	}
	candN := 0
	if topN > 0 {
		candN = overfetch * topN
	}

	results := make([][]*core.Item, len(c.Arms))
	eg, _ := errgroup.WithContext(ctx)
	for i, arm := range c.Arms {
		// 权重为 0 的路直接跳过：它对融合没有任何贡献
		if arm.Strategy == nil || arm.Weight <= 0 {
			continue
		}
		i, arm := i, arm
		eg.Go(func() error {
			items, err := arm.Strategy.Recommend(ctx, userID, candN)
			if err != nil {
				c.Logger.Warn().Err(err).
					Str("strategy", arm.Strategy.Name()).
					Str("user_id", userID).
					Msg("strategy failed, contributing no candidates")
				return nil
			}
			results[i] = items
			return nil
		})
	}
	// 各路错误已就地降级，Wait 只做汇合
	_ = eg.Wait()

	// 融合按 Arms 顺序遍历，浮点累加顺序固定，输出可复现
	combined := make(map[string]*core.Item)
	bestContrib := make(map[string]float64)
	for i, arm := range c.Arms {
		for _, it := range results[i] {
			contrib := it.Score * arm.Weight
			agg, ok := combined[it.ID]
			if !ok {
				agg = core.NewItem(it.ID)
				agg.Strategy = core.AlgorithmHybrid
				combined[it.ID] = agg
			}
			agg.Score += contrib
			for k, v := range it.Labels {
				agg.PutLabel(k, v)
			}
			if agg.Reason == "" || contrib > bestContrib[it.ID] {
				agg.Reason = it.Reason
				bestContrib[it.ID] = contrib
			}
		}
	}

	out := make([]*core.Item, 0, len(combined))
	for _, it := range combined {
		out = append(out, it)
	}
	core.SortByScore(out)
	return core.Truncate(out, topN), nil
}
