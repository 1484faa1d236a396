// Package dsl 是基于 CEL (Common Expression Language) 的候选商品规则表达式。
//
// 表达式可访问的变量：
//   - item：id / score / features / meta / labels
//   - label：label.<key> 直接取 Label.Value
//   - rctx：user_id / session_id / authenticated / history / params
//
// 示例：
//   - `item.meta.category != "mattress"`
//   - `item.score > 0.3 && label.rank_source == "hybrid"`
//   - `!(item.id in rctx.history)`
//   - `has(item.meta.price) && item.meta.price < 500.0`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/homerec/core"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func env() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的表达式，线程安全，可在请求间复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；空表达式恒为 true。
func Compile(expr string) (*Program, error) {
	p := &Program{expr: expr}
	if expr == "" {
		return p, nil
	}
	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	p.prg = prg
	return p, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个候选商品求值，表达式必须返回 bool。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil || p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return b, nil
}

// Evaluate 编译并求值一次，适合临时表达式；热路径请先 Compile。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	if item == nil {
		item = &core.Item{}
	}
	labels := make(map[string]any, len(item.Labels))
	labelValues := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{"value": v.Value, "source": v.Source}
		labelValues[k] = v.Value
	}
	features := make(map[string]any, len(item.Features))
	for k, v := range item.Features {
		features[k] = v
	}
	meta := item.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	r := map[string]any{
		"user_id":       "",
		"session_id":    "",
		"authenticated": false,
		"history":       []string{},
		"params":        map[string]any{},
	}
	if rctx != nil {
		r["user_id"] = rctx.UserID
		r["session_id"] = rctx.SessionID
		r["authenticated"] = rctx.IsAuthenticated()
		if rctx.History != nil {
			r["history"] = rctx.History
		}
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item": map[string]any{
			"id":       item.ID,
			"score":    item.Score,
			"features": features,
			"meta":     meta,
			"labels":   labels,
		},
		"label": labelValues,
		"rctx":  r,
	}
}
