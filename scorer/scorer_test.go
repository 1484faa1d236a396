package scorer

import (
	"math"
	"testing"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/embedding"
)

type mapCatalog map[string]core.Product

func (m mapCatalog) Lookup(id string) (core.Product, bool) {
	p, ok := m[id]
	return p, ok
}

func newStore(t *testing.T, ids []string, dim int, data []float32) *embedding.Store {
	t.Helper()
	s, err := embedding.New(ids, dim, data)
	if err != nil {
		t.Fatalf("embedding.New() error = %v", err)
	}
	return s
}

func fixture(t *testing.T) (*embedding.Store, mapCatalog) {
	t.Helper()
	store := newStore(t,
		[]string{"sofa-a", "sofa-b", "chair-a", "lamp-c", "ghost"},
		2,
		[]float32{
			1, 0,
			1, 0,
			0, 1,
			1, 1,
			0, 0,
		})
	cat := mapCatalog{
		"sofa-a":  {ID: "sofa-a", Category: "sofa", Brand: "acme"},
		"sofa-b":  {ID: "sofa-b", Category: "sofa", Brand: "birch"},
		"chair-a": {ID: "chair-a", Category: "chair", Brand: "acme"},
		"lamp-c":  {ID: "lamp-c", Category: "lamp", Brand: "cove"},
		// ghost 不在目录中
	}
	return store, cat
}

func TestAddScaled(t *testing.T) {
	dst := []float64{1, 1}
	if !AddScaled(dst, Signal{1, 2}, 0.5) {
		t.Fatal("AddScaled() = false, want true")
	}
	if dst[0] != 1.5 || dst[1] != 2 {
		t.Errorf("dst = %v, want [1.5 2]", dst)
	}
	if AddScaled(dst, nil, 1) {
		t.Error("AddScaled(nil) = true, want false")
	}
	if AddScaled(dst, Signal{1}, 1) {
		t.Error("AddScaled(short) = true, want false")
	}
}

func TestImage_Score(t *testing.T) {
	store, _ := fixture(t)
	s := &Image{Store: store}

	got := s.Score("sofa-a")
	if len(got) != store.Len() {
		t.Fatalf("len = %d, want %d", len(got), store.Len())
	}
	if math.Abs(got[0]-1) > 1e-9 || math.Abs(got[1]-1) > 1e-9 {
		t.Errorf("identical vectors score = %v, want 1", got[:2])
	}
	if got[2] != 0 {
		t.Errorf("orthogonal score = %v, want 0", got[2])
	}
	if got[4] != 0 {
		t.Errorf("zero vector score = %v, want 0", got[4])
	}

	if s.Score("unknown") != nil {
		t.Error("Score(unknown) != nil")
	}
}

func TestCategoryBrand_Score(t *testing.T) {
	store, cat := fixture(t)
	s := &CategoryBrand{Store: store, Catalog: cat}

	got := s.Score("sofa-a")
	want := []float64{1.0, 0.6, 0.4, 0, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("score[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !(got[0] > got[1] && got[1] > got[2] && got[2] > got[3]) {
		t.Errorf("scores not ordered both > category > brand > none: %v", got)
	}

	tests := []struct {
		name string
		id   string
	}{
		{name: "unknown source", id: "missing"},
		{name: "source not in catalog", id: "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.id)
			if len(got) != store.Len() {
				t.Fatalf("len = %d, want %d", len(got), store.Len())
			}
			for i, v := range got {
				if v != 0 {
					t.Errorf("score[%d] = %v, want 0", i, v)
				}
			}
		})
	}
}

func TestUserPreference_Score(t *testing.T) {
	store, cat := fixture(t)
	s := &UserPreference{Store: store, Catalog: cat}

	tests := []struct {
		name    string
		signals *core.BehaviorSignals
		want    []float64
	}{
		{
			name:    "wishlist only",
			signals: core.NewBehaviorSignals([]string{"sofa-a"}, nil, nil),
			want:    []float64{1, 0, 0, 0, 0},
		},
		{
			name:    "cart only",
			signals: core.NewBehaviorSignals(nil, []string{"sofa-a"}, nil),
			want:    []float64{2, 0, 0, 0, 0},
		},
		{
			name:    "order only",
			signals: core.NewBehaviorSignals(nil, nil, []string{"sofa-a"}),
			want:    []float64{3, 0, 0, 0, 0},
		},
		{
			name:    "all three",
			signals: core.NewBehaviorSignals([]string{"sofa-a"}, []string{"sofa-a"}, []string{"sofa-a"}),
			want:    []float64{6, 0, 0, 0, 0},
		},
		{
			name:    "mixed pairs",
			signals: core.NewBehaviorSignals([]string{"chair-a"}, []string{"lamp-c"}, []string{"ghost", "unknown"}),
			want:    []float64{0, 0, 1, 2, 0},
		},
		{
			name:    "no signals",
			signals: core.NewBehaviorSignals(nil, nil, nil),
			want:    []float64{0, 0, 0, 0, 0},
		},
		{
			name:    "nil signals",
			signals: nil,
			want:    []float64{0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.signals)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("score[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHistoryBoost(t *testing.T) {
	store, _ := fixture(t)

	scores := make([]float64, store.Len())
	hits := HistoryBoost(scores, store, []string{"lamp-c", "unknown", "sofa-a", "chair-a"}, 0.2)
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
	// 位置 0 / 2 / 3，长度 4
	want := map[int]float64{3: 0.2, 0: 0.1, 2: 0.05}
	for i, v := range scores {
		if math.Abs(v-want[i]) > 1e-9 {
			t.Errorf("scores[%d] = %v, want %v", i, v, want[i])
		}
	}
	if !(scores[3] > scores[2]) {
		t.Errorf("most recent boost %v not greater than oldest %v", scores[3], scores[2])
	}

	empty := make([]float64, store.Len())
	if n := HistoryBoost(empty, store, nil, 0.2); n != 0 {
		t.Errorf("HistoryBoost(empty) hits = %d, want 0", n)
	}
	for i, v := range empty {
		if v != 0 {
			t.Errorf("empty history changed scores[%d] = %v", i, v)
		}
	}
}
