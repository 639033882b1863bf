package strategy

import (
	"context"
	"sort"

	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/similarity"
)

// DefaultNeighborK 是用户协同过滤默认考虑的相似用户数。
const DefaultNeighborK = 20

// UserBasedCF 是基于用户的协同过滤策略（User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 对全量用户计算与目标用户的皮尔逊相关系数（在公共物品上）
//  2. 只保留正相似度的 Top-K 邻居——负相关和零相关不提供有效信号，
//     直接丢弃而不是降权
//  3. 对邻居碰过、目标用户没碰过的物品累加 score += 邻居权重 × 邻居相似度，
//     同时累加 normalizer += 邻居相似度
//  4. 最终分 = score / normalizer：加权平均而不是裸和，
//     被不同数量邻居碰过的物品之间分数才可比
type UserBasedCF struct {
	Snap *Snapshot

	// K 相似邻居数上限；<= 0 时使用 DefaultNeighborK
	K int
}

func (s *UserBasedCF) Name() string { return core.AlgorithmUserBased }

func (s *UserBasedCF) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	if s.Snap == nil || userID == "" {
		return nil, nil
	}
	target := s.Snap.Matrix.UserItems(userID)
	if len(target) == 0 {
		// 冷启动：没有任何交互记录，信号不足不是错误
		return nil, nil
	}

	k := s.K
	if k <= 0 {
		k = DefaultNeighborK
	}

	type neighbor struct {
		id  string
		sim float64
	}
	neighbors := make([]neighbor, 0)
	for otherID, otherItems := range s.Snap.Matrix {
		if otherID == userID {
			continue
		}
		sim := similarity.Pearson(target, otherItems)
		if sim > 0 {
			neighbors = append(neighbors, neighbor{id: otherID, sim: sim})
		}
	}
	if len(neighbors) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 相似度降序，同分按用户 ID 升序：邻居选择可复现
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim != neighbors[j].sim {
			return neighbors[i].sim > neighbors[j].sim
		}
		return neighbors[i].id < neighbors[j].id
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	scores := make(map[string]float64)
	norms := make(map[string]float64)
	for _, nb := range neighbors {
		for itemID, w := range s.Snap.Matrix.UserItems(nb.id) {
			if _, seen := target[itemID]; seen {
				// 排除在累加阶段完成，分母不被已交互物品污染
				continue
			}
			scores[itemID] += w * nb.sim
			norms[itemID] += nb.sim
		}
	}

	out := make([]*core.Item, 0, len(scores))
	for itemID, score := range scores {
		out = append(out, newResult(itemID, score/norms[itemID], s.Name(), ReasonUserBased))
	}
	core.SortByScore(out)
	return core.Truncate(out, topN), nil
}
