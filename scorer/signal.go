// Package scorer 实现混合推荐的各路打分信号。
//
// 每个 Scorer 产出一个与 embedding.Store 行顺序逐位对齐的分数向量（Signal）。
// nil Signal 表示“无信号”，调用方按零贡献处理，不是错误。
package scorer

import "github.com/rushteam/homerec/embedding"

// Signal 是与 Store 行顺序对齐的分数向量，每次打分新建，不持久化。
type Signal []float64

// 信号名称，用于分项得分（Item.Features）与监控标签。
const (
	SignalImage    = "image"
	SignalCatBrand = "catbrand"
	SignalHistory  = "history"
	SignalUser     = "user"
)

// AddScaled 执行 dst += w * src；src 为 nil 或长度不一致时不做任何修改并返回 false。
func AddScaled(dst []float64, src Signal, w float64) bool {
	if src == nil || len(src) != len(dst) {
		return false
	}
	for i, v := range src {
		dst[i] += w * v
	}
	return true
}

// Image 是图像相似度打分器：源商品向量与所有商品向量的余弦相似度。
type Image struct {
	Store *embedding.Store
}

// Score 返回源商品与所有商品的余弦相似度；源商品不在 Store 中时返回 nil（无信号）。
// 源商品自身位置的值为 1.0，排除自身由调用方负责。
func (s *Image) Score(productID string) Signal {
	if s == nil || s.Store == nil {
		return nil
	}
	idx, ok := s.Store.Lookup(productID)
	if !ok {
		return nil
	}
	return Signal(s.Store.Similarities(idx))
}
