// Package pipeline 把推荐逻辑拆成可组合的 Node 链：
// rank.Hybrid 产出候选，其后的 filter / rerank / postprocess 节点由 YAML 配置驱动。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
)

type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行各 Node，任一 Node 出错即中止。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if p == nil {
		return items, nil
	}
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		metrics.PipelineNodeDurationSeconds.WithLabelValues(node.Name()).Observe(elapsed.Seconds())
		if err != nil {
			return nil, fmt.Errorf("pipeline node %s: %w", node.Name(), err)
		}
		logging.Ctx(ctx).Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", elapsed).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}

// Append 在链尾追加 Node。
func (p *Pipeline) Append(nodes ...Node) *Pipeline {
	p.Nodes = append(p.Nodes, nodes...)
	return p
}
