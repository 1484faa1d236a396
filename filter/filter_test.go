package filter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/store"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, len(ids))
	for i, id := range ids {
		out[i] = core.NewItem(id)
	}
	return out
}

type brokenList struct{}

func (brokenList) GetList(context.Context, string) ([]string, error) {
	return nil, errors.New("redis down")
}

func TestFilterNode(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	adapter := NewStoreAdapter(ms)
	_ = adapter.PutList(ctx, "blacklist", []string{"p3"})
	_ = adapter.PutList(ctx, "user:hidden:u1", []string{"p4"})

	gift, err := NewExprFilter(`item.meta.category == "gift-card"`, false)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}

	in := items("p1", "p2", "p3", "p4", "p5")
	in[4].Meta["category"] = "gift-card"

	tests := []struct {
		name    string
		filters []Filter
		rctx    *core.RecommendContext
		want    []string
	}{
		{
			name:    "no filters",
			filters: nil,
			rctx:    &core.RecommendContext{},
			want:    []string{"p1", "p2", "p3", "p4", "p5"},
		},
		{
			name:    "static and stored blacklist",
			filters: []Filter{NewBlacklistFilter([]string{"p1"}, adapter, "blacklist")},
			rctx:    &core.RecommendContext{},
			want:    []string{"p2", "p4", "p5"},
		},
		{
			name:    "hidden ignored for anonymous",
			filters: []Filter{NewUserHiddenFilter(adapter, "")},
			rctx:    &core.RecommendContext{UserID: "u1"},
			want:    []string{"p1", "p2", "p3", "p4", "p5"},
		},
		{
			name:    "hidden applied for authenticated",
			filters: []Filter{NewUserHiddenFilter(adapter, "")},
			rctx:    &core.RecommendContext{UserID: "u1", Authenticated: true},
			want:    []string{"p1", "p2", "p3", "p5"},
		},
		{
			name:    "expr",
			filters: []Filter{gift},
			rctx:    &core.RecommendContext{},
			want:    []string{"p1", "p2", "p3", "p4"},
		},
		{
			name:    "broken store keeps static blacklist",
			filters: []Filter{NewBlacklistFilter([]string{"p2"}, brokenList{}, "blacklist")},
			rctx:    &core.RecommendContext{},
			want:    []string{"p1", "p3", "p4", "p5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &FilterNode{Filters: tt.filters}
			got, err := node.Process(ctx, tt.rctx, append([]*core.Item(nil), in...))
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if ids := core.IDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Process() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestExprFilter_Invert(t *testing.T) {
	keep, err := NewExprFilter(`item.score > 0.5`, true)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}
	hi, lo := core.NewItem("hi"), core.NewItem("lo")
	hi.Score, lo.Score = 0.9, 0.1

	if drop, _ := keep.ShouldFilter(context.Background(), nil, hi); drop {
		t.Error("inverted filter dropped matching item")
	}
	if drop, _ := keep.ShouldFilter(context.Background(), nil, lo); !drop {
		t.Error("inverted filter kept non-matching item")
	}

	if _, err := NewExprFilter(`item.score >`, false); err == nil {
		t.Error("NewExprFilter(invalid) error = nil")
	}
}
