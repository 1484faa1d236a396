package rerank

import (
	"context"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pipeline"
)

// LabelJoined 标记已由 JoinNode 拼接商品记录的 Item。
const LabelJoined = "joined"

// JoinNode 把商品记录拼接到 Item.Meta（name / category / brand / image_url / price），
// 目录中查不到的商品被丢弃，顺序不变。
type JoinNode struct {
	Catalog core.Catalog

	// KeepMissing 为 true 时保留目录中查不到的商品
	KeepMissing bool
}

func (n *JoinNode) Name() string {
	return "postprocess.join"
}

func (n *JoinNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *JoinNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Catalog == nil {
		return items, nil
	}
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		p, ok := n.Catalog.Lookup(it.ID)
		if !ok {
			if n.KeepMissing {
				out = append(out, it)
			}
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any, 5)
		}
		it.Meta["name"] = p.Name
		it.Meta["category"] = p.Category
		it.Meta["brand"] = p.Brand
		it.Meta["image_url"] = p.ImageURL
		it.Meta["price"] = p.Price
		it.PutLabel(LabelJoined, core.Label{Value: "catalog", Source: n.Name()})
		out = append(out, it)
	}
	return out, nil
}

// Product 从已拼接的 Item 还原商品记录；Item 未经 JoinNode 处理时返回 false。
func Product(it *core.Item) (core.Product, bool) {
	if it == nil {
		return core.Product{}, false
	}
	if _, ok := it.Labels[LabelJoined]; !ok {
		return core.Product{}, false
	}
	p := core.Product{
		ID:       it.ID,
		Name:     it.MetaString("name"),
		Category: it.MetaString("category"),
		Brand:    it.MetaString("brand"),
		ImageURL: it.MetaString("image_url"),
	}
	if price, ok := it.Meta["price"].(float64); ok {
		p.Price = price
	}
	return p, true
}

var _ pipeline.Node = (*JoinNode)(nil)
