package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/pipeline"
)

// FilterNode 组合多个过滤器，任何一个过滤器返回 true 该商品即被移除。
// 单个过滤器出错时记录日志并跳过该过滤器，不中断推荐。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		b, ok := f.(Binder)
		if !ok {
			filters = append(filters, f)
			continue
		}
		bound, err := b.Bind(ctx, rctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Msg("filter bind failed")
		}
		if bound != nil {
			filters = append(filters, bound)
		}
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reason := ""
		for _, f := range filters {
			hit, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				logging.Ctx(ctx).Debug().Err(err).Str("filter", f.Name()).Str("item", item.ID).Msg("filter error")
				continue
			}
			if hit {
				reason = f.Name()
				break
			}
		}
		if reason != "" {
			item.PutLabel("filtered", core.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

var _ pipeline.Node = (*FilterNode)(nil)
