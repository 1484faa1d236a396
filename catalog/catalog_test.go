package catalog

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/store"
)

func TestMemory_LookupAndJoin(t *testing.T) {
	c := New([]core.Product{
		{ID: "p2", Name: "Lamp", Category: "lighting", Brand: "cove"},
		{ID: "p1", Name: "Sofa", Category: "sofa", Brand: "acme"},
		{ID: "", Name: "orphan"},
	})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if p, ok := c.Lookup("p1"); !ok || p.Name != "Sofa" {
		t.Errorf("Lookup(p1) = %+v, %v", p, ok)
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) ok = true")
	}
	if got := c.All(); got[0].ID != "p1" || got[1].ID != "p2" {
		t.Errorf("All() order = %v", got)
	}

	joined := Join(c, []string{"p2", "gone", "p1"})
	ids := make([]string, len(joined))
	for i, p := range joined {
		ids[i] = p.ID
	}
	if !reflect.DeepEqual(ids, []string{"p2", "p1"}) {
		t.Errorf("Join() = %v, want [p2 p1]", ids)
	}
	if got := Join(nil, []string{"p1"}); len(got) != 0 {
		t.Errorf("Join(nil catalog) = %v, want empty", got)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	data := `[
		{"p_id": 101, "name": "Oak Table", "category": "table", "brand": "acme", "image_path": "/media/101.jpg"},
		{"p_id": "sku-2", "name": "Rug", "category": "decor", "brand": "weave", "image_url": "https://cdn/2.jpg", "price": 49.5}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	p, ok := c.Lookup("101")
	if !ok {
		t.Fatal("numeric p_id not loaded as \"101\"")
	}
	if p.ImageURL != "/media/101.jpg" || p.Category != "table" {
		t.Errorf("product 101 = %+v", p)
	}
	if p2, _ := c.Lookup("sku-2"); p2.Price != 49.5 || p2.ImageURL != "https://cdn/2.jpg" {
		t.Errorf("product sku-2 = %+v", p2)
	}

	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); !core.IsUnavailable(err) {
		t.Errorf("LoadJSON(missing) error = %v, want UNAVAILABLE", err)
	}
	if _, err := ParseJSON([]byte(`{"p_id":1}`)); !core.IsInvalidInput(err) {
		t.Errorf("ParseJSON(object) error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()

	products := []core.Product{
		{ID: "p1", Name: "Sofa", Category: "sofa", Brand: "acme", Price: 999},
		{ID: "p2", Name: "Chair", Category: "chair", Brand: "acme"},
	}
	if err := Save(ctx, ms, "homerec:products", products); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = ms.HSet(ctx, "homerec:products", "bad", []byte("{"))

	c, err := LoadStore(ctx, ms, "homerec:products")
	if err != nil {
		t.Fatalf("LoadStore() error = %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if p, _ := c.Lookup("p1"); !reflect.DeepEqual(p, products[0]) {
		t.Errorf("Lookup(p1) = %+v, want %+v", p, products[0])
	}
}
