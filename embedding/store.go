// Package embedding 提供进程级只读的商品图像向量存储。
//
// Store 在进程启动时由离线批处理产出的向量文件构建一次，之后不可变，
// 可在任意数量的并发请求间无锁共享。
package embedding

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/homerec/core"
)

// Store 是不可变的商品向量存储：行对齐的 ID 数组 + 扁平 float32 矩阵 + ID→行号索引。
type Store struct {
	ids   []string
	index map[string]int
	dim   int
	data  []float32 // 行优先，len(data) == len(ids)*dim
	norms []float64 // 每行 L2 范数，加载时预计算
}

// New 由 ID 数组与扁平矩阵构建 Store。
// ids 与 data 的所有权转移给 Store，调用方之后不应再修改。
func New(ids []string, dim int, data []float32) (*Store, error) {
	if len(ids) == 0 {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput, "embedding: id array is empty")
	}
	if dim <= 0 {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput,
			fmt.Sprintf("embedding: invalid dimension %d", dim))
	}
	if len(data) != len(ids)*dim {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput,
			fmt.Sprintf("embedding: %d ids but %d values (dim=%d)", len(ids), len(data), dim))
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput,
				fmt.Sprintf("embedding: duplicate id %q at row %d", id, i))
		}
		index[id] = i
	}

	s := &Store{
		ids:   ids,
		index: index,
		dim:   dim,
		data:  data,
		norms: make([]float64, len(ids)),
	}
	for i := range ids {
		row := s.row(i)
		s.norms[i] = math.Sqrt(dot(row, row))
	}
	return s, nil
}

// Len 返回行数（商品数）。
func (s *Store) Len() int { return len(s.ids) }

// Dim 返回向量维度。
func (s *Store) Dim() int { return s.dim }

// Lookup 返回商品 ID 对应的行号。
func (s *Store) Lookup(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// ID 返回行号对应的商品 ID；越界时 ok=false。
func (s *Store) ID(i int) (string, bool) {
	if i < 0 || i >= len(s.ids) {
		return "", false
	}
	return s.ids[i], true
}

// IDs 返回按行顺序排列的商品 ID 副本。
func (s *Store) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Vector 返回某行向量的副本。
func (s *Store) Vector(i int) ([]float32, bool) {
	if i < 0 || i >= len(s.ids) {
		return nil, false
	}
	out := make([]float32, s.dim)
	copy(out, s.row(i))
	return out, true
}

func (s *Store) row(i int) []float32 {
	return s.data[i*s.dim : (i+1)*s.dim]
}

// Similarities 计算第 i 行与所有行的余弦相似度，结果按行对齐；第 i 位为自身相似度（1.0）。
// 任一向量范数为 0 时该对的相似度为 0。
func (s *Store) Similarities(i int) []float64 {
	if i < 0 || i >= len(s.ids) {
		return nil
	}
	return s.similaritiesTo(s.row(i), s.norms[i])
}

// SimilaritiesTo 计算任意查询向量与所有行的余弦相似度；维度不匹配返回 nil。
func (s *Store) SimilaritiesTo(vec []float32) []float64 {
	if len(vec) != s.dim {
		return nil
	}
	return s.similaritiesTo(vec, math.Sqrt(dot(vec, vec)))
}

func (s *Store) similaritiesTo(q []float32, qNorm float64) []float64 {
	out := make([]float64, len(s.ids))
	if qNorm == 0 {
		return out
	}
	for j := range s.ids {
		n := s.norms[j]
		if n == 0 {
			continue
		}
		out[j] = dot(q, s.row(j)) / (qNorm * n)
	}
	return out
}

// Search 实现 core.VectorService：暴力余弦检索，结果按分数降序、同分按行号升序。
func (s *Store) Search(_ context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	if req == nil {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector search request is nil")
	}
	if !core.ValidateVectorMetric(req.Metric) {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeNotSupported, "unsupported metric: "+req.Metric)
	}

	var sims []float64
	switch {
	case len(req.Vector) > 0:
		if len(req.Vector) != s.dim {
			return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector dimension mismatch")
		}
		sims = s.SimilaritiesTo(req.Vector)
	case req.ItemID != "":
		i, ok := s.Lookup(req.ItemID)
		if !ok {
			return &core.VectorSearchResult{Items: []core.VectorSearchItem{}}, nil
		}
		sims = s.Similarities(i)
	default:
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector search needs a vector or an item id")
	}

	exclude := make(map[string]struct{}, len(req.Exclude)+1)
	for _, id := range req.Exclude {
		exclude[id] = struct{}{}
	}
	if req.ItemID != "" && len(req.Vector) == 0 {
		exclude[req.ItemID] = struct{}{}
	}

	rows := make([]int, 0, len(sims))
	for j := range sims {
		if _, skip := exclude[s.ids[j]]; skip {
			continue
		}
		rows = append(rows, j)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return sims[rows[a]] > sims[rows[b]]
	})

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}
	if len(rows) > topK {
		rows = rows[:topK]
	}

	items := make([]core.VectorSearchItem, len(rows))
	for k, j := range rows {
		items[k] = core.VectorSearchItem{ID: s.ids[j], Score: sims[j]}
	}
	return &core.VectorSearchResult{Items: items}, nil
}

var _ core.VectorService = (*Store)(nil)

func dot(a, b []float32) float64 {
	var sum float64
	for k := range a {
		sum += float64(a[k]) * float64(b[k])
	}
	return sum
}
