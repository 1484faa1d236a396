package core

// RecommendContext 承载一次推荐请求的会话/用户信息，贯穿整个 Pipeline 透传。
//
// History 由会话层维护（最新浏览在前），推荐核心只读不写；
// Signals 可由调用方预取后注入，为空时由排序器按需从行为数据源拉取（每请求一次）。
type RecommendContext struct {
	RequestID string
	SessionID string

	// UserID 为空表示匿名访问
	UserID string

	// Authenticated 由上游认证层给出；为 false 时不使用用户行为信号
	Authenticated bool

	// History 是当前会话最近浏览的商品 ID，最新在前
	History []string

	// Signals 是已登录用户的心愿单/购物车/订单商品集合（可选，预取）
	Signals *BehaviorSignals

	// Labels 是请求级标签，可驱动 Pipeline 行为
	Labels map[string]Label

	// Params 请求级参数，例如 top_k、scene 等
	Params map[string]any
}

// IsAuthenticated 判断是否可以使用用户行为信号。
func (rctx *RecommendContext) IsAuthenticated() bool {
	return rctx != nil && rctx.Authenticated && rctx.UserID != ""
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl Label) {
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
func (rctx *RecommendContext) GetLabel(key string) (Label, bool) {
	if rctx.Labels == nil {
		return Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
