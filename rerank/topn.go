package rerank

import (
	"context"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/conv"
)

// TopNNode 截取前 N 个商品，通常放在过滤与多样性重排之后，把放大的候选收回到展示数量。
//
// N <= 0 时使用请求参数 top_k；两者都没有时不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = int(conv.ConfigGetInt64(rctx.Params, "top_k", 0))
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}

var _ pipeline.Node = (*TopNNode)(nil)
