// Package catalog 提供商品目录：进程启动时全量预取到内存，请求路径上只做 map 查找。
//
// 数据来源：
//   - LoadJSON：向量离线任务同时产出的 products.json
//   - LoadPostgres：商城库的 products / categories / brands 表
//   - LoadStore：Redis Hash（field=商品 ID，value=商品 JSON）
package catalog

import (
	"sort"

	"github.com/rushteam/homerec/core"
)

// Memory 是只读的内存商品目录，构建后可并发读取。
type Memory struct {
	products map[string]core.Product
}

// New 由商品列表构建目录；ID 为空的记录被忽略，重复 ID 以后出现的为准。
func New(products []core.Product) *Memory {
	m := &Memory{products: make(map[string]core.Product, len(products))}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *Memory) Lookup(id string) (core.Product, bool) {
	if m == nil {
		return core.Product{}, false
	}
	p, ok := m.products[id]
	return p, ok
}

// Len 返回商品数。
func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	return len(m.products)
}

// All 返回按 ID 排序的全部商品。
func (m *Memory) All() []core.Product {
	out := make([]core.Product, 0, m.Len())
	if m == nil {
		return out
	}
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Join 把排序后的商品 ID 映射回商品记录，保持顺序，目录中不存在的 ID 被丢弃。
func Join(c core.Catalog, ids []string) []core.Product {
	out := make([]core.Product, 0, len(ids))
	if c == nil {
		return out
	}
	for _, id := range ids {
		if p, ok := c.Lookup(id); ok {
			out = append(out, p)
		}
	}
	return out
}

var _ core.Catalog = (*Memory)(nil)
