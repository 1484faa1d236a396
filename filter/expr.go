package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pkg/dsl"
)

// ExprFilter 按 CEL 表达式过滤，表达式为 true 的商品被移除。
// Invert 为 true 时语义反转：只保留表达式为 true 的商品。
//
//	&ExprFilter{Program: p}  // p: item.meta.category == "gift-card"
type ExprFilter struct {
	Program *dsl.Program
	Invert  bool
}

// NewExprFilter 编译表达式，编译失败时返回错误（启动期暴露配置问题）。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: p, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	ok, err := f.Program.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return ok != f.Invert, nil
}
