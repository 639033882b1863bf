package core

import "context"

// ProfileSource 提供用户兴趣画像（term → weight 的稀疏向量）。
//
// 主要用途是内容策略的冷启动补充：当用户在当前时间窗口内没有任何交互时，
// 从外部画像/特征服务（如 Feast Feature Store）拉取长期兴趣作为口味向量。
// 画像的 term 与物品文本特征共享同一词表空间（类别词、标签词），
// 因此可以直接与物品的 TF-IDF 向量做余弦匹配。
//
// 实现：
//   - feast.ProfileSource（基于官方 Feast Go SDK 的 gRPC 客户端）
//   - 测试中可用任意内存实现替换
type ProfileSource interface {
	// Name 返回画像源名称（用于日志/监控）
	Name() string

	// TasteProfile 返回用户兴趣向量；无画像时返回空 map，不是错误
	TasteProfile(ctx context.Context, userID string) (map[string]float64, error)
}
