package core

// RankContext 承载单次请求的用户信息与请求级标签，贯穿整个 Pipeline 透传。
// 每次调用新建，调用结束即丢弃。
type RankContext struct {
	UserID string

	// Labels 是请求级标签，例如本次使用的系数来源（default / resolved）
	Labels map[string]Label
}

// NewRankContext 创建请求上下文。
func NewRankContext(userID string) *RankContext {
	return &RankContext{
		UserID: userID,
		Labels: make(map[string]Label),
	}
}

// PutLabel 写入请求级 Label。
func (rctx *RankContext) PutLabel(key string, lbl Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RankContext) GetLabel(key string) (Label, bool) {
	if rctx.Labels == nil {
		return Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
