package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/rushteam/homerec/core"
)

// 目录来源。
const (
	SourceJSON     = "json"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
)

// Config 商品目录配置。
type Config struct {
	// Source: json / postgres / redis
	Source string `koanf:"source"`
	// Path products.json 路径（Source=json）
	Path string `koanf:"path"`
	// Query 覆盖默认查询（Source=postgres）
	Query string `koanf:"query"`
	// HashKey 商品 Hash 的 key（Source=redis）
	HashKey string `koanf:"hash_key"`
}

// jsonRecord 兼容离线任务写出的 products.json：p_id 可能是数字，图片字段为 image_path。
type jsonRecord struct {
	ID        flexID  `json:"p_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Brand     string  `json:"brand"`
	ImageURL  string  `json:"image_url"`
	ImagePath string  `json:"image_path"`
	Price     float64 `json:"price"`
}

func (r jsonRecord) product() core.Product {
	p := core.Product{
		ID:       string(r.ID),
		Name:     r.Name,
		Category: r.Category,
		Brand:    r.Brand,
		ImageURL: r.ImageURL,
		Price:    r.Price,
	}
	if p.ImageURL == "" {
		p.ImageURL = r.ImagePath
	}
	return p
}

// flexID 同时接受字符串与数字形式的商品 ID。
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("p_id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// LoadJSON 读取 JSON 数组形式的商品元数据文件。
func LoadJSON(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog: file not found: "+path, err)
		}
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseJSON(data)
}

// ParseJSON 解析 JSON 数组形式的商品元数据。
func ParseJSON(data []byte) (*Memory, error) {
	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: decode products json", err)
	}
	products := make([]core.Product, len(records))
	for i, r := range records {
		products[i] = r.product()
	}
	return New(products), nil
}

// DB 是 Postgres 目录加载使用的最小接口，*pgxpool.Pool 与 *pgx.Conn 均满足。
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DefaultQuery 读取商品及其类目、品牌名称；列顺序必须与 Product 字段一致。
const DefaultQuery = `
	SELECT p.p_id::text, p.p_name, COALESCE(c.name, ''), COALESCE(b.name, ''),
	       COALESCE(p.image_url, ''), COALESCE(p.price, 0)::float8
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id`

// LoadPostgres 全量读取商品表到内存。query 为空时使用 DefaultQuery。
func LoadPostgres(ctx context.Context, db DB, query string) (*Memory, error) {
	if query == "" {
		query = DefaultQuery
	}
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog: query products", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Product, error) {
		var p core.Product
		err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.ImageURL, &p.Price)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: scan products: %w", err)
	}
	return New(products), nil
}

// LoadStore 从 Hash 读取商品（field=商品 ID，value=商品 JSON）。解析失败的条目被跳过。
func LoadStore(ctx context.Context, kv core.KeyValueStore, hashKey string) (*Memory, error) {
	all, err := kv.HGetAll(ctx, hashKey)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog: read hash "+hashKey, err)
	}
	products := make([]core.Product, 0, len(all))
	for id, raw := range all {
		var r jsonRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		p := r.product()
		if p.ID == "" {
			p.ID = id
		}
		products = append(products, p)
	}
	return New(products), nil
}

// Save 把目录写入 Hash，供 LoadStore 读取。
func Save(ctx context.Context, kv core.KeyValueStore, hashKey string, products []core.Product) error {
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("catalog: marshal %s: %w", p.ID, err)
		}
		if err := kv.HSet(ctx, hashKey, p.ID, data); err != nil {
			return fmt.Errorf("catalog: hset %s: %w", p.ID, err)
		}
	}
	return nil
}
