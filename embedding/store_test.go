package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/homerec/core"
)

const eps = 1e-9

func mustStore(t *testing.T, ids []string, dim int, data []float32) *Store {
	t.Helper()
	s, err := New(ids, dim, data)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		dim  int
		data []float32
	}{
		{name: "empty ids", ids: nil, dim: 2, data: nil},
		{name: "zero dim", ids: []string{"a"}, dim: 0, data: nil},
		{name: "length mismatch", ids: []string{"a", "b"}, dim: 2, data: []float32{1, 2, 3}},
		{name: "duplicate id", ids: []string{"a", "a"}, dim: 1, data: []float32{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ids, tt.dim, tt.data)
			if err == nil {
				t.Fatal("New() error = nil, want error")
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("New() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestStore_Lookup(t *testing.T) {
	s := mustStore(t, []string{"p1", "p2", "p3"}, 2, []float32{1, 0, 0, 1, 1, 1})

	if s.Len() != 3 || s.Dim() != 2 {
		t.Fatalf("Len/Dim = %d/%d, want 3/2", s.Len(), s.Dim())
	}
	for i, id := range []string{"p1", "p2", "p3"} {
		got, ok := s.Lookup(id)
		if !ok || got != i {
			t.Errorf("Lookup(%q) = %d,%v, want %d,true", id, got, ok, i)
		}
		back, ok := s.ID(i)
		if !ok || back != id {
			t.Errorf("ID(%d) = %q,%v, want %q,true", i, back, ok, id)
		}
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup(missing) ok = true, want false")
	}
	if _, ok := s.ID(3); ok {
		t.Error("ID(3) ok = true, want false")
	}
	if _, ok := s.ID(-1); ok {
		t.Error("ID(-1) ok = true, want false")
	}
}

func TestStore_Similarities(t *testing.T) {
	s := mustStore(t,
		[]string{"a", "b", "c", "zero"},
		3,
		[]float32{
			1, 2, 3,
			2, 4, 6, // 与 a 同方向
			-3, 0, 1, // 与 a 正交
			0, 0, 0,
		})

	sims := s.Similarities(0)
	if len(sims) != s.Len() {
		t.Fatalf("len(sims) = %d, want %d", len(sims), s.Len())
	}
	if math.Abs(sims[0]-1) > eps {
		t.Errorf("self similarity = %v, want 1", sims[0])
	}
	if math.Abs(sims[1]-1) > eps {
		t.Errorf("parallel similarity = %v, want 1", sims[1])
	}
	if math.Abs(sims[2]) > eps {
		t.Errorf("orthogonal similarity = %v, want 0", sims[2])
	}
	if sims[3] != 0 {
		t.Errorf("zero vector similarity = %v, want 0", sims[3])
	}

	zero := s.Similarities(3)
	for j, v := range zero {
		if v != 0 {
			t.Errorf("zero row similarity[%d] = %v, want 0", j, v)
		}
	}

	if s.Similarities(99) != nil {
		t.Error("Similarities(out of range) != nil")
	}
}

func TestStore_SelfSimilarityIsOne(t *testing.T) {
	data := make([]float32, 0, 5*16)
	for i := 0; i < 5; i++ {
		for k := 0; k < 16; k++ {
			data = append(data, float32((i+1)*(k+3)%7)+0.25)
		}
	}
	s := mustStore(t, []string{"a", "b", "c", "d", "e"}, 16, data)
	for i := 0; i < s.Len(); i++ {
		if got := s.Similarities(i)[i]; math.Abs(got-1) > 1e-6 {
			t.Errorf("row %d self similarity = %v, want 1", i, got)
		}
	}
}

func TestStore_Search(t *testing.T) {
	s := mustStore(t,
		[]string{"a", "b", "c", "d"},
		2,
		[]float32{
			1, 0,
			1, 0.1,
			0, 1,
			1, 0.1, // 与 b 相同，同分按行号
		})

	res, err := s.Search(context.Background(), &core.VectorSearchRequest{ItemID: "a", TopK: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(res.Items))
	}
	if res.Items[0].ID != "b" || res.Items[1].ID != "d" {
		t.Errorf("items = %+v, want b then d", res.Items)
	}

	res, err = s.Search(context.Background(), &core.VectorSearchRequest{Vector: []float32{0, 1}, TopK: 1, Exclude: []string{"c"}})
	if err != nil {
		t.Fatalf("Search(vector) error = %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID == "c" {
		t.Errorf("items = %+v, want one item other than c", res.Items)
	}

	res, err = s.Search(context.Background(), &core.VectorSearchRequest{ItemID: "unknown"})
	if err != nil || len(res.Items) != 0 {
		t.Errorf("Search(unknown) = %+v, %v, want empty", res, err)
	}

	if _, err := s.Search(context.Background(), &core.VectorSearchRequest{Vector: []float32{1}}); !core.IsInvalidInput(err) {
		t.Errorf("Search(dim mismatch) error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.Search(context.Background(), &core.VectorSearchRequest{ItemID: "a", Metric: "euclidean"}); !core.IsNotSupported(err) {
		t.Errorf("Search(euclidean) error = %v, want NOT_SUPPORTED", err)
	}
}
