// Package filter 在混合排序之后剔除不可推荐的商品（运营黑名单、用户屏蔽、CEL 规则）。
package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// Filter 判断一个候选商品是否应该被过滤掉。
// 返回 true 表示过滤（移除），false 表示保留。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Binder 是可选接口：需要按请求读取外部数据的过滤器在 Process 开头绑定一次，
// 返回只属于本次请求的 Filter，避免逐商品访问存储。
type Binder interface {
	Bind(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}

// idSet 是按商品 ID 过滤的请求级 Filter。
type idSet struct {
	name string
	ids  map[string]struct{}
}

func newIDSet(name string, ids []string) *idSet {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &idSet{name: name, ids: set}
}

func (s *idSet) Name() string { return s.name }

func (s *idSet) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, hit := s.ids[item.ID]
	return hit, nil
}
