// Package behavior 提供已登录用户的行为数据源（心愿单 / 购物车 / 订单）。
//
// 推荐请求只在入口处调用一次 Fetch 预取全部信号，打分阶段不再做任何 I/O。
package behavior

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/homerec/core"
)

// Fetch 并发读取用户的三类行为数据并组装为 BehaviorSignals。
// 任一数据源失败则返回错误（由调用方决定是否降级为空信号）。
func Fetch(ctx context.Context, src core.BehaviorSource, userID string) (*core.BehaviorSignals, error) {
	if src == nil || userID == "" {
		return core.NewBehaviorSignals(nil, nil, nil), nil
	}

	var wishlist, cart, orders []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := src.Wishlist(gctx, userID)
		wishlist = ids
		return err
	})
	g.Go(func() error {
		ids, err := src.Cart(gctx, userID)
		cart = ids
		return err
	})
	g.Go(func() error {
		ids, err := src.Orders(gctx, userID)
		orders = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, core.WrapDomainError(core.ModuleBehavior, core.ErrorCodeUnavailable,
			"behavior: fetch from "+src.Name(), err)
	}
	return core.NewBehaviorSignals(wishlist, cart, orders), nil
}
