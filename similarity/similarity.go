// Package similarity 提供协同过滤使用的相似度度量，全部为无状态纯函数，
// 可在任意 (user, strategy) 维度上并行调用。
//
// 三种度量的分工：
//   - Cosine：对量级敏感，适合用户-用户比较（交互强度本身是信号）
//   - Pearson：去掉每个用户自身的评分尺度偏置，重度用户与轻度用户只要"模式"
//     相似就能得到相近的分数
//   - Jaccard：物品维度用"被同一批用户碰过"的二值重合度就足够，计算也便宜
//
// 所有浮点累加都按排序后的 key 顺序进行：map 的遍历顺序每次都不同，
// 而浮点加法不满足结合律，直接 range 会让相同输入在两次调用间产生
// 最后几位不同的结果，ULP 级的差异足以翻转同分截断。
package similarity

import (
	"math"
	"sort"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sumSquares(m map[string]float64) float64 {
	var sum float64
	for _, k := range sortedKeys(m) {
		v := m[k]
		sum += v * v
	}
	return sum
}

// Cosine 计算两个稀疏向量的余弦相似度。
// 点积只在 key 交集上累加，但 L2 范数各自在全量 key 上计算——这是余弦与
// Jaccard 式交并比的本质区别。任一范数为 0 或无交集时返回 0。
func Cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// 在较小的向量上遍历求交集点积
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	var dot float64
	for _, k := range sortedKeys(small) {
		if lv, ok := large[k]; ok {
			dot += small[k] * lv
		}
	}
	if dot == 0 {
		return 0
	}

	normA := sumSquares(a)
	normB := sumSquares(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Pearson 计算两个评分向量在公共 key 上的皮尔逊相关系数。
// 均值只在公共 key 上求（而不是各自的全量 key），公共 key 少于 2 个时返回 0
// ——单个共同点无法建立相关性。
func Pearson(a, b map[string]float64) float64 {
	common := make([]string, 0)
	for k := range a {
		if _, ok := b[k]; ok {
			common = append(common, k)
		}
	}
	if len(common) < 2 {
		return 0
	}
	sort.Strings(common)

	var meanA, meanB float64
	for _, k := range common {
		meanA += a[k]
		meanB += b[k]
	}
	n := float64(len(common))
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for _, k := range common {
		da := a[k] - meanA
		db := b[k] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// Jaccard 计算两个集合（以 map 的 key 集表示，value 被忽略）的 Jaccard 相似度：
// |交集| / |并集|。两个空集按约定返回 0（而不是 NaN）。
// 物品相似度用它：key 是与该物品交互过的用户集合。
// 交集计数是整数累加，遍历顺序不影响结果。
func Jaccard(a, b map[string]float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
