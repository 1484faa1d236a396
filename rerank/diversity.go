package rerank

import (
	"context"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pipeline"
)

// Diversity 限制同一类目的商品数量，保持原有顺序。
// 类目来源优先级：label[LabelKey].Value，其次 meta[LabelKey]（string）；取不到类目的商品不受限制。
type Diversity struct {
	LabelKey string // 默认 "category"

	// MaxPerCategory 每个类目最多保留的商品数，<= 0 时为 1
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	counts := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		cate := ""
		if lbl, ok := it.Labels[key]; ok {
			cate = lbl.Value
		}
		if cate == "" {
			cate = it.MetaString(key)
		}
		if cate == "" {
			out = append(out, it)
			continue
		}
		if counts[cate] >= limit {
			continue
		}
		counts[cate]++
		out = append(out, it)
	}
	return out, nil
}

var _ pipeline.Node = (*Diversity)(nil)
