package core

import (
	"context"
	"time"
)

// InteractionEvent 是一次用户-物品交互（购买/浏览等）。
// Weight 是从交互强度换算出的非负实数（例如数量 × 归一化价格）；
// 同一 (user, item) 的多次交互在构建亲和矩阵时累加，而不是覆盖。
type InteractionEvent struct {
	UserID    string
	ItemID    string
	Weight    float64
	Timestamp time.Time
}

// ItemDescriptor 是物品的只读描述数据，归属于外部目录系统。
// 文本字段（Category / Tags / Description）用于内容策略的 TF-IDF 向量。
type ItemDescriptor struct {
	ItemID      string
	Category    string
	Price       float64
	Tags        []string
	Description string
}

// InteractionSource 是交互数据源的领域接口，由外部数据访问层实现。
// windowDays 指定拉取的时间窗口（最近 N 天）。
type InteractionSource interface {
	FetchInteractions(ctx context.Context, windowDays int) ([]InteractionEvent, error)
}

// CatalogSource 是物品目录数据源的领域接口，由外部数据访问层实现。
type CatalogSource interface {
	FetchItemDescriptors(ctx context.Context) ([]ItemDescriptor, error)
}
