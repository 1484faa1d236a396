package core

import "context"

// Product 是商品目录中的一条记录，推荐核心只读使用 Category / Brand。
type Product struct {
	ID       string  `json:"p_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	ImageURL string  `json:"image_url,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

// Catalog 是商品目录的领域接口。
//
// 设计原则：
//   - 进程启动时全量预取到内存，请求路径上只做 map 查找（避免 N+1）
//   - 查不到的商品（已下架但仍被历史/订单引用）返回 ok=false，不报错
//
// 实现：
//   - catalog.Memory（由 JSON / PostgreSQL / Redis Hash 加载）
type Catalog interface {
	// Lookup 按商品 ID 查找记录
	Lookup(id string) (Product, bool)
}

// BehaviorSignals 是已登录用户的行为信号集合，每个请求读取一次，不做跨请求缓存。
type BehaviorSignals struct {
	Wishlist map[string]struct{}
	Cart     map[string]struct{}
	Orders   map[string]struct{}
}

// NewBehaviorSignals 由三个 ID 列表构建信号集合（自动去重）。
func NewBehaviorSignals(wishlist, cart, orders []string) *BehaviorSignals {
	return &BehaviorSignals{
		Wishlist: toSet(wishlist),
		Cart:     toSet(cart),
		Orders:   toSet(orders),
	}
}

// Empty 判断是否没有任何行为信号。
func (s *BehaviorSignals) Empty() bool {
	return s == nil || (len(s.Wishlist) == 0 && len(s.Cart) == 0 && len(s.Orders) == 0)
}

// Products 返回三类信号涉及的全部商品 ID（去重）。
func (s *BehaviorSignals) Products() map[string]struct{} {
	out := make(map[string]struct{})
	if s == nil {
		return out
	}
	for _, set := range []map[string]struct{}{s.Wishlist, s.Cart, s.Orders} {
		for id := range set {
			out[id] = struct{}{}
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// BehaviorSource 是用户行为数据源的领域接口。
//
// 实现：
//   - behavior.StoreSource（Redis / 内存，JSON 数组）
//   - behavior.Postgres（wishlist / cart_items / order_items 表）
//   - behavior.Breaker（熔断包装）
type BehaviorSource interface {
	// Name 返回数据源名称（用于日志/监控）
	Name() string

	// Wishlist 返回用户心愿单中的商品 ID
	Wishlist(ctx context.Context, userID string) ([]string, error)

	// Cart 返回用户购物车中的商品 ID
	Cart(ctx context.Context, userID string) ([]string, error)

	// Orders 返回用户历史订单中的商品 ID
	Orders(ctx context.Context, userID string) ([]string, error)
}
