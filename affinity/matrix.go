// Package affinity 把原始交互事件转换成稀疏的用户→物品亲和矩阵。
//
// 矩阵是按时间窗口构建的瞬态结构，不做持久化；目录与交互的稀疏比决定了
// 这里必须用嵌套 map 而不是稠密数组。
package affinity

import "github.com/rushteam/personakit/core"

// Matrix 是稀疏亲和矩阵：userID → (itemID → 累积权重)。
// 某个 itemID key 不存在表示"没有观测到交互"，语义上不同于权重为 0。
type Matrix map[string]map[string]float64

// UserItems 返回某个用户的亲和向量；用户不存在时返回 nil。
func (m Matrix) UserItems(userID string) map[string]float64 {
	return m[userID]
}

// DefaultMaxEventWeight 是单次交互权重的默认上限。
// cosine / pearson 都对量级敏感，一笔异常大的交易会主导整个邻域计算，
// 所以必须在进矩阵前截断。上限是可调参数，不是硬编码常量。
const DefaultMaxEventWeight = 10.0

// Builder 把交互事件流构建成亲和矩阵，纯转换、无副作用。
type Builder struct {
	// MaxEventWeight 单次事件权重上限；<= 0 时使用 DefaultMaxEventWeight
	MaxEventWeight float64
}

// Build 按 userID、itemID 分组并累加权重。空输入产出空矩阵，不是错误。
// 单次事件的权重先截断到上限再累加；同一 (user, item) 的多次交互是累加关系。
func (b *Builder) Build(events []core.InteractionEvent) Matrix {
	limit := b.MaxEventWeight
	if limit <= 0 {
		limit = DefaultMaxEventWeight
	}

	m := make(Matrix)
	for _, ev := range events {
		if ev.UserID == "" || ev.ItemID == "" {
			continue
		}
		w := ev.Weight
		if w < 0 {
			continue
		}
		if w > limit {
			w = limit
		}
		row, ok := m[ev.UserID]
		if !ok {
			row = make(map[string]float64)
			m[ev.UserID] = row
		}
		row[ev.ItemID] += w
	}
	return m
}

// ItemUserIndex 从亲和矩阵构建目录级的物品→用户倒排表：itemID → (userID → 权重)。
// 它不依赖任何单个用户的数据，是物品协同过滤（Jaccard 邻居表）的输入，
// 同一时间窗口内可在多个用户的请求间复用。
func ItemUserIndex(m Matrix) map[string]map[string]float64 {
	idx := make(map[string]map[string]float64)
	for userID, row := range m {
		for itemID, w := range row {
			users, ok := idx[itemID]
			if !ok {
				users = make(map[string]float64)
				idx[itemID] = users
			}
			users[userID] = w
		}
	}
	return idx
}
