package core

// 算法名称常量，对应 Options.Algorithm。
const (
	AlgorithmUserBased    = "user-based"
	AlgorithmItemBased    = "item-based"
	AlgorithmContentBased = "content-based"
	AlgorithmHybrid       = "hybrid"
)

// Options 是 GetRecommendations 的请求参数。
type Options struct {
	// TopN 返回的最大结果数；0 使用引擎默认值；负数是调用方误用，快速失败
	TopN int

	// Algorithm 策略名称：user-based / item-based / content-based / hybrid（默认 hybrid）
	Algorithm string

	// Context 请求场景（如 "home" / "cart"），同一用户不同场景的缓存互不影响
	Context string

	// UseCache 为 true 时先查缓存，未命中则计算并回写
	UseCache bool
}

// ValidAlgorithm 检查算法名称是否合法；空串视为 hybrid。
func ValidAlgorithm(name string) bool {
	switch name {
	case "", AlgorithmUserBased, AlgorithmItemBased, AlgorithmContentBased, AlgorithmHybrid:
		return true
	}
	return false
}
