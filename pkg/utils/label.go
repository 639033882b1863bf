package utils

// Label 是推荐结果上的可解释标记：记录一个事实（值）与它的来源（策略/缓存/过滤器）。
// 推荐理由、策略归属、过滤原因都以 Label 形式挂在 Item 上，外部消费方按需读取。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // user-based / item-based / content-based / hybrid / cache / filter ...
}

// NewLabel 构造一个 Label。
func NewLabel(value, source string) Label {
	return Label{Value: value, Source: source}
}

// MergeLabel 合并同名 Label，默认策略是"保留历史、可追踪"：
// - Value 以 '|' 累积
// - Source 以 ',' 累积
// 混合策略在融合多路结果时会触发此合并，因此同一 key 上可以看到每一路的贡献。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
