package behavior

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rushteam/homerec/core"
)

// DB 是 Postgres 行为数据源使用的最小接口，*pgxpool.Pool 与 *pgx.Conn 均满足。
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// 默认查询，对应商城库的 wishlist / cart + cart_items / orders + order_items 表。
const (
	DefaultWishlistQuery = `SELECT DISTINCT product_id FROM wishlist WHERE user_id = $1`
	DefaultCartQuery     = `SELECT DISTINCT ci.product_id FROM cart_items ci JOIN cart c ON c.id = ci.cart_id WHERE c.user_id = $1`
	DefaultOrdersQuery   = `SELECT DISTINCT oi.product_id FROM order_items oi JOIN orders o ON o.id = oi.order_id WHERE o.user_id = $1`
)

// Postgres 从关系库读取行为数据；查询语句可覆盖，必须只返回一列商品 ID（text）。
type Postgres struct {
	DB DB

	WishlistQuery string
	CartQuery     string
	OrdersQuery   string
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{
		DB:            db,
		WishlistQuery: DefaultWishlistQuery,
		CartQuery:     DefaultCartQuery,
		OrdersQuery:   DefaultOrdersQuery,
	}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Wishlist(ctx context.Context, userID string) ([]string, error) {
	return p.query(ctx, "wishlist", orDefault(p.WishlistQuery, DefaultWishlistQuery), userID)
}

func (p *Postgres) Cart(ctx context.Context, userID string) ([]string, error) {
	return p.query(ctx, "cart", orDefault(p.CartQuery, DefaultCartQuery), userID)
}

func (p *Postgres) Orders(ctx context.Context, userID string) ([]string, error) {
	return p.query(ctx, "orders", orDefault(p.OrdersQuery, DefaultOrdersQuery), userID)
}

func (p *Postgres) query(ctx context.Context, kind, sql, userID string) ([]string, error) {
	rows, err := p.DB.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("behavior: query %s: %w", kind, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("behavior: scan %s: %w", kind, err)
	}
	return ids, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var _ core.BehaviorSource = (*Postgres)(nil)
