package strategy

import (
	"context"
	"sort"

	"github.com/rushteam/personakit/core"
)

// ItemBasedCF 是基于物品的协同过滤策略（Item-CF）。
//
// 核心思想："被同一批用户喜欢的物品，相互相似"
//
// 与 User-CF 的镜像关系：对用户已交互的每个种子物品，查询预计算好的
// 物品 Jaccard 邻居表，候选物品按（用户对种子的亲和权重 × 物品相似度）
// 加权累加，再除以相似度之和做归一化。
//
// 物品-物品相似度矩阵是 O(n²) 的目录级计算，不依赖任何单个用户，
// 在快照构建时算一次（见 BuildNeighborTable），同窗口内所有请求复用。
type ItemBasedCF struct {
	Snap *Snapshot
}

func (s *ItemBasedCF) Name() string { return core.AlgorithmItemBased }

func (s *ItemBasedCF) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if s.Snap == nil || userID == "" {
		return nil, nil
	}
	target := s.Snap.Matrix.UserItems(userID)
	if len(target) == 0 {
		return nil, nil
	}

	// 种子物品按 ID 排序遍历，浮点累加顺序固定，输出可复现
	seeds := make([]string, 0, len(target))
	for itemID := range target {
		seeds = append(seeds, itemID)
	}
	sort.Strings(seeds)

	scores := make(map[string]float64)
	norms := make(map[string]float64)
	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, nb := range s.Snap.Neighbors[seed] {
			if _, seen := target[nb.ID]; seen {
				continue
			}
			scores[nb.ID] += target[seed] * nb.Sim
			norms[nb.ID] += nb.Sim
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}

	out := make([]*core.Item, 0, len(scores))
	for itemID, score := range scores {
		out = append(out, newResult(itemID, score/norms[itemID], s.Name(), ReasonItemBased))
	}
	core.SortByScore(out)
	return core.Truncate(out, topN), nil
}
