package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// DefaultHiddenKeyPrefix 用户屏蔽（“不感兴趣”）列表的默认 key 前缀。
const DefaultHiddenKeyPrefix = "user:hidden:"

// UserHiddenFilter 过滤登录用户标记为“不感兴趣”的商品，key 为 {KeyPrefix}{UserID}。
// 匿名请求不做任何过滤。
type UserHiddenFilter struct {
	Store     ListStore
	KeyPrefix string
}

func NewUserHiddenFilter(store ListStore, keyPrefix string) *UserHiddenFilter {
	return &UserHiddenFilter{Store: store, KeyPrefix: keyPrefix}
}

func (f *UserHiddenFilter) Name() string {
	return "filter.user_hidden"
}

func (f *UserHiddenFilter) Bind(ctx context.Context, rctx *core.RecommendContext) (Filter, error) {
	if f.Store == nil || !rctx.IsAuthenticated() {
		return newIDSet(f.Name(), nil), nil
	}
	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = DefaultHiddenKeyPrefix
	}
	ids, err := f.Store.GetList(ctx, prefix+rctx.UserID)
	if err != nil {
		return nil, err
	}
	return newIDSet(f.Name(), ids), nil
}

func (f *UserHiddenFilter) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	bound, err := f.Bind(ctx, rctx)
	if err != nil {
		return false, err
	}
	return bound.ShouldFilter(ctx, rctx, item)
}
