// Package rank 实现混合推荐排序：图像相似度、类目/品牌相似度、浏览近因、用户偏好四路信号线性加权。
package rank

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/homerec/behavior"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/embedding"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/conv"
	"github.com/rushteam/homerec/scorer"
)

// DefaultTopK 首页推荐位数量。
const DefaultTopK = 6

// ParamTopK 请求级参数：覆盖 TopK。
const ParamTopK = "top_k"

// Weights 是四路信号的线性系数，相互独立，不要求和为 1，也不做归一化。
type Weights struct {
	Image    float64 `koanf:"w_image" json:"w_image"`
	CatBrand float64 `koanf:"w_catbrand" json:"w_catbrand"`
	History  float64 `koanf:"w_history" json:"w_history"`
	User     float64 `koanf:"w_user" json:"w_user"`
}

// DefaultWeights 返回默认权重 0.4 / 0.2 / 0.2 / 0.2。
func DefaultWeights() Weights {
	return Weights{Image: 0.4, CatBrand: 0.2, History: 0.2, User: 0.2}
}

// Hybrid 是混合排序器，每次调用无状态，可并发使用。
//
// 流程：
//  1. 分数向量初始化为 0（与 Store 行对齐）
//  2. 对浏览历史中每个商品累加 w_image*图像相似度、w_catbrand*类目品牌相似度
//  3. 浏览近因加权 w_history*(1-i/len)
//  4. 已登录时累加 w_user*用户偏好
//  5. 排除历史商品（候选集中直接去掉，不依赖哨兵分数）
//  6. 分数降序、同分按行号升序稳定排序，去重后截取 TopK
type Hybrid struct {
	Store   *embedding.Store
	Catalog core.Catalog

	// Behavior 为空或请求已携带 Signals 时不发起行为数据读取
	Behavior core.BehaviorSource

	// BehaviorTimeout 行为数据读取超时，<= 0 不单独设置
	BehaviorTimeout time.Duration

	Weights Weights

	// TopK <= 0 时使用 DefaultTopK
	TopK int

	// Overfetch 候选放大倍数，给后续过滤节点留余量；<= 1 表示不放大
	Overfetch int
}

// NewHybrid 使用默认权重与 TopK 创建排序器。
func NewHybrid(store *embedding.Store, catalog core.Catalog, src core.BehaviorSource) *Hybrid {
	return &Hybrid{
		Store:    store,
		Catalog:  catalog,
		Behavior: src,
		Weights:  DefaultWeights(),
		TopK:     DefaultTopK,
	}
}

func (h *Hybrid) Name() string        { return "rank.hybrid" }
func (h *Hybrid) Kind() pipeline.Kind { return pipeline.KindRank }

// Process 忽略输入 items，产出混合排序后的候选（放大 Overfetch 倍）。
func (h *Hybrid) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return h.Score(ctx, rctx)
}

// Rank 返回推荐商品 ID，长度不超过 TopK。
func (h *Hybrid) Rank(ctx context.Context, rctx *core.RecommendContext) ([]string, error) {
	items, err := h.score(ctx, rctx, h.topK(rctx))
	if err != nil {
		return nil, err
	}
	return core.IDs(items), nil
}

// Score 返回带分数与分项信号的候选，长度不超过 TopK*Overfetch。
func (h *Hybrid) Score(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	limit := h.topK(rctx)
	if h.Overfetch > 1 {
		limit *= h.Overfetch
	}
	return h.score(ctx, rctx, limit)
}

func (h *Hybrid) topK(rctx *core.RecommendContext) int {
	if rctx != nil {
		if k := conv.ConfigGetInt64(rctx.Params, ParamTopK, 0); k > 0 {
			return int(k)
		}
	}
	if h.TopK > 0 {
		return h.TopK
	}
	return DefaultTopK
}

// breakdown 记录各路信号加权后的贡献，用于 explain。
type breakdown struct {
	image, catbrand, history, user []float64
}

func (h *Hybrid) score(ctx context.Context, rctx *core.RecommendContext, limit int) ([]*core.Item, error) {
	if h.Store == nil {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeUnavailable, "rank: embedding store not loaded")
	}
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}
	n := h.Store.Len()
	w := h.Weights
	scores := make([]float64, n)
	bd := breakdown{
		image:    make([]float64, n),
		catbrand: make([]float64, n),
		history:  make([]float64, n),
		user:     make([]float64, n),
	}

	// 1. 图像相似度
	img := &scorer.Image{Store: h.Store}
	for _, id := range rctx.History {
		sig := img.Score(id)
		if sig == nil {
			metrics.SignalMiss(scorer.SignalImage)
			continue
		}
		scorer.AddScaled(scores, sig, w.Image)
		scorer.AddScaled(bd.image, sig, w.Image)
	}

	// 2. 类目/品牌相似度
	cb := &scorer.CategoryBrand{Store: h.Store, Catalog: h.Catalog}
	for _, id := range rctx.History {
		sig := cb.Score(id)
		scorer.AddScaled(scores, sig, w.CatBrand)
		scorer.AddScaled(bd.catbrand, sig, w.CatBrand)
	}

	// 3. 浏览近因
	scorer.HistoryBoost(scores, h.Store, rctx.History, w.History)
	scorer.HistoryBoost(bd.history, h.Store, rctx.History, w.History)

	// 4. 用户偏好
	if rctx.IsAuthenticated() {
		signals := h.signals(ctx, rctx)
		up := &scorer.UserPreference{Store: h.Store, Catalog: h.Catalog}
		sig := up.Score(signals)
		scorer.AddScaled(scores, sig, w.User)
		scorer.AddScaled(bd.user, sig, w.User)
	}

	// 5. 排除已浏览商品
	excluded := make(map[int]struct{}, len(rctx.History))
	for _, id := range rctx.History {
		if idx, ok := h.Store.Lookup(id); ok {
			excluded[idx] = struct{}{}
		}
	}
	rows := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if _, skip := excluded[i]; !skip {
			rows = append(rows, i)
		}
	}

	// 6. 稳定排序 + 去重 + 截断
	sort.SliceStable(rows, func(a, b int) bool {
		return scores[rows[a]] > scores[rows[b]]
	})
	if limit <= 0 {
		limit = DefaultTopK
	}
	out := make([]*core.Item, 0, min(limit, len(rows)))
	seen := make(map[string]struct{}, limit)
	for _, i := range rows {
		if len(out) >= limit {
			break
		}
		id, ok := h.Store.ID(i)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, h.newItem(id, scores[i], i, &bd))
	}

	logging.Ctx(ctx).Debug().
		Int("history", len(rctx.History)).
		Bool("authenticated", rctx.IsAuthenticated()).
		Int("candidates", len(rows)).
		Int("returned", len(out)).
		Msg("hybrid rank done")
	return out, nil
}

// signals 返回请求的行为信号：优先使用已注入的 Signals，否则读取一次数据源；失败降级为空。
func (h *Hybrid) signals(ctx context.Context, rctx *core.RecommendContext) *core.BehaviorSignals {
	if rctx.Signals != nil {
		return rctx.Signals
	}
	if h.Behavior == nil {
		return nil
	}
	if h.BehaviorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.BehaviorTimeout)
		defer cancel()
	}
	sig, err := behavior.Fetch(ctx, h.Behavior, rctx.UserID)
	if err != nil {
		metrics.SignalMiss(scorer.SignalUser)
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", rctx.UserID).Msg("behavior source failed, ranking without user signal")
		return nil
	}
	rctx.Signals = sig
	return sig
}

func (h *Hybrid) newItem(id string, score float64, row int, bd *breakdown) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	it.Features[scorer.SignalImage] = bd.image[row]
	it.Features[scorer.SignalCatBrand] = bd.catbrand[row]
	it.Features[scorer.SignalHistory] = bd.history[row]
	it.Features[scorer.SignalUser] = bd.user[row]
	it.Meta["row"] = row
	if h.Catalog != nil {
		if p, ok := h.Catalog.Lookup(id); ok {
			it.Meta["category"] = p.Category
			it.Meta["brand"] = p.Brand
		}
	}
	it.PutLabel("rank_source", core.Label{Value: "hybrid", Source: "rank"})
	return it
}

var _ pipeline.Node = (*Hybrid)(nil)
