// Package builders 注册内置后处理 Node 的配置构建器，import 即生效。
package builders

import (
	"fmt"

	"github.com/rushteam/homerec/config"
	"github.com/rushteam/homerec/filter"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/conv"
	"github.com/rushteam/homerec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("postprocess.join", BuildJoinNode)
}

// BuildFilterNode 构建组合过滤节点，支持 blacklist / user_hidden / expr 三类过滤器：
//
//	filters:
//	  - {type: blacklist, item_ids: [p1], key: homerec:blacklist}
//	  - {type: user_hidden, key_prefix: "user:hidden:"}
//	  - {type: expr, expr: 'item.meta.category == "gift-card"'}
func BuildFilterNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	var lists filter.ListStore
	if res != nil && res.Store != nil {
		lists = filter.NewStoreAdapter(res.Store)
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for i, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filters[%d]: expect map, got %T", i, fc)
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, lists, key))

		case "user_hidden":
			keyPrefix := conv.ConfigGet(filterMap, "key_prefix", filter.DefaultHiddenKeyPrefix)
			filters = append(filters, filter.NewUserHiddenFilter(lists, keyPrefix))

		case "expr":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("filters[%d]: expr is required", i)
			}
			f, err := filter.NewExprFilter(expr, conv.ConfigGet(filterMap, "invert", false))
			if err != nil {
				return nil, fmt.Errorf("filters[%d]: %w", i, err)
			}
			filters = append(filters, f)

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func BuildDiversityNode(cfg map[string]any, _ *pipeline.Resources) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "category")
	if labelKey == "" {
		labelKey = "category"
	}
	return &rerank.Diversity{
		LabelKey:       labelKey,
		MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 1)),
	}, nil
}

func BuildTopNNode(cfg map[string]any, _ *pipeline.Resources) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must not be negative, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

// BuildJoinNode 需要 Resources.Catalog。
func BuildJoinNode(cfg map[string]any, res *pipeline.Resources) (pipeline.Node, error) {
	if res == nil || res.Catalog == nil {
		return nil, fmt.Errorf("postprocess.join requires a catalog")
	}
	return &rerank.JoinNode{
		Catalog:     res.Catalog,
		KeepMissing: conv.ConfigGet(cfg, "keep_missing", false),
	}, nil
}
