package core

import "context"

// VectorService 是向量检索服务的领域接口。
//
// 使用场景：
//   - 相似商品（"看了又看"）：以商品图像向量检索最相似的其他商品
//
// 实现：
//   - embedding.Store 实现此接口（进程内暴力余弦检索）
type VectorService interface {
	// Search 向量搜索
	Search(ctx context.Context, req *VectorSearchRequest) (*VectorSearchResult, error)
}

// VectorSearchRequest 向量搜索请求
type VectorSearchRequest struct {
	// Vector 查询向量；为空时使用 ItemID 对应的向量
	Vector []float32

	// ItemID 以已有商品作为查询（可选）
	ItemID string

	// TopK 返回 TopK 个最相似的结果
	TopK int

	// Metric 距离度量方式，目前仅支持 cosine
	Metric string

	// Exclude 需要排除的商品 ID
	Exclude []string
}

// VectorSearchItem 单个向量搜索结果项
type VectorSearchItem struct {
	ID    string
	Score float64
}

// VectorSearchResult 向量搜索结果
type VectorSearchResult struct {
	// Items 搜索结果项列表（按相似度降序）
	Items []VectorSearchItem
}

// MetricType 距离度量类型
type MetricType string

const (
	MetricCosine MetricType = "cosine"
)

// ValidateVectorMetric 验证距离度量类型（空串视为 cosine）
func ValidateVectorMetric(metric string) bool {
	switch MetricType(metric) {
	case "", MetricCosine:
		return true
	default:
		return false
	}
}
