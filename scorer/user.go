package scorer

import (
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/embedding"
)

// 用户行为权重：浏览 < 加购 < 下单。
const (
	WishlistWeight = 1.0
	CartWeight     = 2.0
	OrderWeight    = 3.0
)

type catBrandKey struct {
	category string
	brand    string
}

// UserPreference 是用户偏好打分器。
//
// 把心愿单、购物车、订单中的商品按 (类目, 品牌) 聚合权重，
// 再为 Store 中每个商品赋予其 (类目, 品牌) 的累计权重；未出现的组合得 0。
type UserPreference struct {
	Store   *embedding.Store
	Catalog core.Catalog
}

// Score 按行为信号打分；信号为空时返回全零向量。
func (s *UserPreference) Score(signals *core.BehaviorSignals) Signal {
	if s == nil || s.Store == nil {
		return nil
	}
	out := make(Signal, s.Store.Len())
	if s.Catalog == nil || signals.Empty() {
		return out
	}

	prefs := s.preferences(signals)
	if len(prefs) == 0 {
		return out
	}
	for i := range out {
		id, _ := s.Store.ID(i)
		p, ok := s.Catalog.Lookup(id)
		if !ok {
			continue
		}
		out[i] = prefs[catBrandKey{p.Category, p.Brand}]
	}
	return out
}

// preferences 返回 (类目, 品牌) → 累计权重；目录中查不到的商品被忽略。
func (s *UserPreference) preferences(signals *core.BehaviorSignals) map[catBrandKey]float64 {
	prefs := make(map[catBrandKey]float64)
	if signals == nil {
		return prefs
	}
	accumulate := func(set map[string]struct{}, w float64) {
		for id := range set {
			p, ok := s.Catalog.Lookup(id)
			if !ok {
				continue
			}
			prefs[catBrandKey{p.Category, p.Brand}] += w
		}
	}
	accumulate(signals.Wishlist, WishlistWeight)
	accumulate(signals.Cart, CartWeight)
	accumulate(signals.Orders, OrderWeight)
	return prefs
}
