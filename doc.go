// Package homerec 是家居商城首页的混合推荐引擎。
//
// 设计要点：
//   - 四路信号线性加权：图像相似度、类目/品牌相似度、浏览近因、登录用户偏好
//   - 向量库启动时一次性加载，只读共享；排序器无状态，可并发调用
//   - 已浏览商品作为候选集后置过滤排除，不依赖哨兵分数
//   - 排序之后的过滤、多样性、截断、拼接由 pipeline Node 链完成，可由 YAML 配置驱动
package homerec

import (
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/rank"
)

// 轻量 facade：便于直接 import "homerec" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Ranker   = rank.Hybrid
	Weights  = rank.Weights
)

const (
	KindRank        = pipeline.KindRank
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// NewRanker 使用默认权重创建混合排序器。
var NewRanker = rank.NewHybrid

// DefaultWeights 返回默认权重 0.4 / 0.2 / 0.2 / 0.2。
var DefaultWeights = rank.DefaultWeights
