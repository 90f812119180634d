package core

// Label 记录打分链路中的可解释信息（如系数来源），随候选透传到展示层。
// Value 与 Source 的语义由调用方定义；这里只提供合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // model / rank / rerank ...
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积，空值不参与合并。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}
	merged := Label{Value: existing.Value + "|" + incoming.Value}
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
