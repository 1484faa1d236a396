package scorer

import (
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/embedding"
)

// 类目/品牌相似度的加分值，两者可叠加，最大 1.0。
const (
	CategoryMatchScore = 0.6
	BrandMatchScore    = 0.4
)

// CategoryBrand 是类目/品牌相似度打分器。
//
// 对 Store 中每个商品：类目相同 +0.6，品牌相同 +0.4；目录中查不到的商品得 0。
// 源商品查不到时返回与 Store 等长的全零向量（优雅降级，不报错）。
type CategoryBrand struct {
	Store   *embedding.Store
	Catalog core.Catalog
}

func (s *CategoryBrand) Score(productID string) Signal {
	if s == nil || s.Store == nil {
		return nil
	}
	out := make(Signal, s.Store.Len())
	if s.Catalog == nil {
		return out
	}
	target, ok := s.Catalog.Lookup(productID)
	if !ok {
		return out
	}

	for i := range out {
		id, _ := s.Store.ID(i)
		p, ok := s.Catalog.Lookup(id)
		if !ok {
			continue
		}
		var score float64
		if p.Category == target.Category {
			score += CategoryMatchScore
		}
		if p.Brand == target.Brand {
			score += BrandMatchScore
		}
		out[i] = score
	}
	return out
}
