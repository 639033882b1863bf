package strategy

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/rushteam/personakit/core"
)

// minTokenLen 之下的 token 被丢弃：短词几乎全是停用词和噪声。
const minTokenLen = 4

// tokenPattern 在小写化之后按非字母数字切分。
var tokenPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize 归一化分词：小写、去符号、丢弃长度不足 minTokenLen 的 token。
func Tokenize(text string) []string {
	parts := tokenPattern.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= minTokenLen {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Corpus 是目录全量物品的 TF-IDF 语料：每个物品一个稀疏特征向量。
// 构建一次后只读，同一窗口内跨请求复用。
type Corpus struct {
	// Vectors itemID → (term → tf-idf 权重)
	Vectors map[string]map[string]float64

	// DocFreq term → 出现该 term 的文档数
	DocFreq map[string]int

	// TotalDocs 文档（物品）总数
	TotalDocs int
}

// BuildCorpus 从物品描述构建 TF-IDF 语料。
// 每个物品的文本是 Category、Tags、Description 的拼接；
// tf 是归一化 token 的计数，idf = ln(totalDocs / docFreq)。
// 文本为空的物品得到全零（空）向量，它们无法通过内容策略曝光，
// 这是可接受的：其他策略仍然可以推荐它们。
func BuildCorpus(descriptors []core.ItemDescriptor) *Corpus {
	c := &Corpus{
		Vectors:   make(map[string]map[string]float64, len(descriptors)),
		DocFreq:   make(map[string]int),
		TotalDocs: len(descriptors),
	}

	termCounts := make(map[string]map[string]int, len(descriptors))
	for _, d := range descriptors {
		text := d.Category + " " + strings.Join(d.Tags, " ") + " " + d.Description
		tokens := Tokenize(text)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		termCounts[d.ItemID] = tf
		for term := range tf {
			c.DocFreq[term]++
		}
	}

	for itemID, tf := range termCounts {
		vec := make(map[string]float64, len(tf))
		for term, count := range tf {
			idf := math.Log(float64(c.TotalDocs) / float64(c.DocFreq[term]))
			if w := float64(count) * idf; w > 0 {
				vec[term] = w
			}
		}
		c.Vectors[itemID] = vec
	}
	return c
}

// Vector 返回某个物品的 TF-IDF 向量；物品不存在时返回 nil。
func (c *Corpus) Vector(itemID string) map[string]float64 {
	return c.Vectors[itemID]
}

// UserProfile 合成用户口味向量：对用户交互过的每个物品，
// 以该用户的亲和权重缩放其 TF-IDF 向量后逐项求和。
// 物品按 ID 排序遍历：每个 term 的浮点累加顺序固定，相同输入产出逐位相同的画像。
func (c *Corpus) UserProfile(userItems map[string]float64) map[string]float64 {
	itemIDs := make([]string, 0, len(userItems))
	for itemID := range userItems {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Strings(itemIDs)

	profile := make(map[string]float64)
	for _, itemID := range itemIDs {
		weight := userItems[itemID]
		for term, w := range c.Vectors[itemID] {
			profile[term] += weight * w
		}
	}
	return profile
}
