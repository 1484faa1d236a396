package rerank

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/homerec/core"
)

type mapCatalog map[string]core.Product

func (m mapCatalog) Lookup(id string) (core.Product, bool) {
	p, ok := m[id]
	return p, ok
}

func withCategory(pairs ...string) []*core.Item {
	out := make([]*core.Item, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		it := core.NewItem(pairs[i])
		if pairs[i+1] != "" {
			it.Meta["category"] = pairs[i+1]
		}
		out = append(out, it)
	}
	return out
}

func TestDiversity(t *testing.T) {
	tests := []struct {
		name string
		max  int
		in   []*core.Item
		want []string
	}{
		{
			name: "one per category by default",
			in:   withCategory("a", "sofa", "b", "sofa", "c", "lamp", "d", "", "e", "lamp"),
			want: []string{"a", "c", "d"},
		},
		{
			name: "two per category",
			max:  2,
			in:   withCategory("a", "sofa", "b", "sofa", "c", "sofa", "d", "lamp"),
			want: []string{"a", "b", "d"},
		},
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Diversity{MaxPerCategory: tt.max}
			got, err := n.Process(context.Background(), nil, tt.in)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if ids := core.IDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Process() = %v, want %v", ids, tt.want)
			}
		})
	}

	labelled := withCategory("x", "sofa", "y", "sofa")
	labelled[1].PutLabel("category", core.Label{Value: "lamp", Source: "rank"})
	got, _ := (&Diversity{}).Process(context.Background(), nil, labelled)
	if len(got) != 2 {
		t.Errorf("label category not preferred over meta: %v", core.IDs(got))
	}
}

func TestTopNNode(t *testing.T) {
	in := withCategory("a", "", "b", "", "c", "", "d", "")
	tests := []struct {
		name string
		n    int
		rctx *core.RecommendContext
		want int
	}{
		{name: "fixed n", n: 2, want: 2},
		{name: "n larger than items", n: 10, want: 4},
		{name: "from request param", rctx: &core.RecommendContext{Params: map[string]any{"top_k": 3}}, want: 3},
		{name: "no limit", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := (&TopNNode{N: tt.n}).Process(context.Background(), tt.rctx, in)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestJoinNode(t *testing.T) {
	cat := mapCatalog{
		"a": {ID: "a", Name: "Sofa", Category: "sofa", Brand: "acme", ImageURL: "/a.jpg", Price: 899},
		"c": {ID: "c", Name: "Lamp", Category: "lamp", Brand: "cove"},
	}
	in := withCategory("a", "", "b", "", "c", "")

	got, err := (&JoinNode{Catalog: cat}).Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ids := core.IDs(got); !reflect.DeepEqual(ids, []string{"a", "c"}) {
		t.Fatalf("Process() = %v, want [a c]", ids)
	}
	if p, ok := Product(got[0]); !ok || !reflect.DeepEqual(p, cat["a"]) {
		t.Errorf("Product() = %+v, %v, want %+v", p, ok, cat["a"])
	}
	if _, ok := Product(withCategory("z", "sofa")[0]); ok {
		t.Error("Product() on unjoined item ok = true")
	}

	kept, _ := (&JoinNode{Catalog: cat, KeepMissing: true}).Process(context.Background(), nil, in)
	if len(kept) != 3 {
		t.Errorf("KeepMissing len = %d, want 3", len(kept))
	}
}
