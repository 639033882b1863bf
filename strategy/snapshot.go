package strategy

import (
	"sort"
	"time"

	"github.com/rushteam/personakit/affinity"
	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/similarity"
)

// DefaultItemNeighborK 是物品邻居表中每个物品保留的邻居数上限。
const DefaultItemNeighborK = 50

// Snapshot 是一个时间窗口内的只读计算产物：亲和矩阵、物品→用户倒排表、
// 物品 Jaccard 邻居表、TF-IDF 语料。
//
// 构建代价是 O(users × items) 甚至 O(items²)，但不依赖任何单个请求的数据，
// 因此同一窗口内的并发推荐请求必须复用同一份快照而不是各自重建
// ——这是整个系统吞吐量的主要杠杆。构建完成后只读，天然并发安全。
type Snapshot struct {
	Matrix    affinity.Matrix
	ItemUsers map[string]map[string]float64
	Items     map[string]core.ItemDescriptor
	Neighbors NeighborTable
	Corpus    *Corpus
	BuiltAt   time.Time
}

// SnapshotConfig 是快照构建参数。
type SnapshotConfig struct {
	// MaxEventWeight 单次事件权重上限（见 affinity.Builder）
	MaxEventWeight float64

	// ItemNeighborK 每个物品保留的 Jaccard 邻居数；<= 0 时使用 DefaultItemNeighborK
	ItemNeighborK int
}

// BuildSnapshot 从交互事件与物品目录构建窗口快照。
func BuildSnapshot(events []core.InteractionEvent, descriptors []core.ItemDescriptor, cfg SnapshotConfig) *Snapshot {
	builder := &affinity.Builder{MaxEventWeight: cfg.MaxEventWeight}
	matrix := builder.Build(events)
	itemUsers := affinity.ItemUserIndex(matrix)

	items := make(map[string]core.ItemDescriptor, len(descriptors))
	for _, d := range descriptors {
		items[d.ItemID] = d
	}

	return &Snapshot{
		Matrix:    matrix,
		ItemUsers: itemUsers,
		Items:     items,
		Neighbors: BuildNeighborTable(itemUsers, cfg.ItemNeighborK),
		Corpus:    BuildCorpus(descriptors),
		BuiltAt:   time.Now(),
	}
}

// Neighbor 是物品邻居表中的一项。
type Neighbor struct {
	ID  string
	Sim float64
}

// NeighborTable 是物品→邻居列表的映射，每个列表按相似度降序（同分按 ID 升序）。
// 相似度是对称的，表中两个方向都会出现，邻居查询是 O(1)。
type NeighborTable map[string][]Neighbor

// BuildNeighborTable 对目录内所有物品做两两 Jaccard 相似度计算（O(n²)），
// 每个物品只保留 Top-K 正相似邻居。
// 输入是物品→用户倒排表：两个物品的相似度即各自用户集合的交并比。
func BuildNeighborTable(itemUsers map[string]map[string]float64, topK int) NeighborTable {
	if topK <= 0 {
		topK = DefaultItemNeighborK
	}

	ids := make([]string, 0, len(itemUsers))
	for id := range itemUsers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := make(NeighborTable, len(ids))
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			sim := similarity.Jaccard(itemUsers[ids[i]], itemUsers[ids[j]])
			if sim <= 0 {
				continue
			}
			table[ids[i]] = append(table[ids[i]], Neighbor{ID: ids[j], Sim: sim})
			table[ids[j]] = append(table[ids[j]], Neighbor{ID: ids[i], Sim: sim})
		}
	}

	for id, neighbors := range table {
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].Sim != neighbors[b].Sim {
				return neighbors[a].Sim > neighbors[b].Sim
			}
			return neighbors[a].ID < neighbors[b].ID
		})
		if len(neighbors) > topK {
			neighbors = neighbors[:topK]
		}
		table[id] = neighbors
	}
	return table
}
