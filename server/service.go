// Package server 提供推荐服务的 HTTP 接口：首页推荐、浏览记录、相似商品与健康检查。
package server

import (
	"context"
	"time"

	"github.com/rushteam/homerec/catalog"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/rerank"
	"github.com/rushteam/homerec/session"
)

// Recommendation 是返回给前端的一条推荐：商品记录加混合分数。
type Recommendation struct {
	core.Product
	Score float64 `json:"score"`
}

// Service 串联会话历史、混合排序、后处理链与商品拼接。
type Service struct {
	Ranker  *rank.Hybrid
	History *session.History
	Catalog core.Catalog

	// Pipeline 为空时只做混合排序
	Pipeline *pipeline.Pipeline

	// Vectors 用于相似商品，通常就是 Ranker.Store
	Vectors core.VectorService
}

// Request 是一次推荐请求的输入。
type Request struct {
	RequestID string
	SessionID string
	UserID    string
	K         int
}

// Recommend 返回按分数排好序的推荐商品，长度不超过 K。
// 会话历史读取失败时按空历史处理。
func (s *Service) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	history, err := s.History.Get(ctx, req.SessionID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("session_id", req.SessionID).Msg("read session history failed")
		history = nil
	}

	rctx := &core.RecommendContext{
		RequestID:     req.RequestID,
		SessionID:     req.SessionID,
		UserID:        req.UserID,
		Authenticated: req.UserID != "",
		History:       history,
		Params:        map[string]any{rank.ParamTopK: req.K},
	}

	items, err := s.Ranker.Score(ctx, rctx)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if s.Pipeline != nil {
		items, err = s.Pipeline.Run(ctx, rctx, items)
		if err != nil {
			metrics.RecommendRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
	}
	if req.K > 0 && len(items) > req.K {
		items = items[:req.K]
	}

	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		p, ok := rerank.Product(it)
		if !ok {
			p, ok = s.Catalog.Lookup(it.ID)
		}
		if !ok {
			metrics.SignalMiss("catalog")
			continue
		}
		out = append(out, Recommendation{Product: p, Score: it.Score})
	}

	outcome := metrics.OutcomeOK
	if len(out) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	logging.Ctx(ctx).Debug().
		Str("session_id", req.SessionID).
		Bool("authenticated", rctx.Authenticated).
		Int("history", len(history)).
		Int("returned", len(out)).
		Msg("recommend done")
	return out, nil
}

// RecordView 记录会话的一次商品浏览，商品必须存在于目录中。
func (s *Service) RecordView(ctx context.Context, sessionID, productID string) error {
	if _, ok := s.Catalog.Lookup(productID); !ok {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "product not found: "+productID)
	}
	return s.History.Push(ctx, sessionID, productID)
}

// Similar 返回与指定商品图像最相似的 k 个商品（不含自身）。
func (s *Service) Similar(ctx context.Context, productID string, k int) ([]Recommendation, error) {
	if s.Vectors == nil {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeUnavailable, "vector service not configured")
	}
	if _, ok := s.Catalog.Lookup(productID); !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "product not found: "+productID)
	}
	res, err := s.Vectors.Search(ctx, &core.VectorSearchRequest{
		ItemID: productID,
		TopK:   k,
		Metric: string(core.MetricCosine),
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(res.Items))
	scores := make(map[string]float64, len(res.Items))
	for i, it := range res.Items {
		ids[i] = it.ID
		scores[it.ID] = it.Score
	}
	products := catalog.Join(s.Catalog, ids)
	out := make([]Recommendation, len(products))
	for i, p := range products {
		out[i] = Recommendation{Product: p, Score: scores[p.ID]}
	}
	return out, nil
}
