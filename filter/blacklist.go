package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// BlacklistFilter 过滤运营下架 / 禁推的商品。
// 静态 ItemIDs 与 Store 中 Key 对应的列表取并集，Store 列表每个请求读取一次。
type BlacklistFilter struct {
	ItemIDs []string
	Store   ListStore
	Key     string
}

func NewBlacklistFilter(itemIDs []string, store ListStore, key string) *BlacklistFilter {
	return &BlacklistFilter{ItemIDs: itemIDs, Store: store, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) Bind(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	ids := f.ItemIDs
	if f.Store != nil && f.Key != "" {
		stored, err := f.Store.GetList(ctx, f.Key)
		if err != nil {
			// 存储不可用时仍使用静态黑名单
			return newIDSet(f.Name(), ids), err
		}
		ids = append(append(make([]string, 0, len(ids)+len(stored)), ids...), stored...)
	}
	return newIDSet(f.Name(), ids), nil
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	bound, err := f.Bind(ctx, rctx)
	if bound == nil {
		return false, err
	}
	return bound.ShouldFilter(ctx, rctx, item)
}
