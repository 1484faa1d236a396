package homerec_test

import (
	"context"
	"fmt"

	"github.com/rushteam/homerec"
	"github.com/rushteam/homerec/catalog"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/embedding"
)

func ExampleNewRanker() {
	emb, _ := embedding.New([]string{"sofa-1", "sofa-2", "lamp-1"}, 2, []float32{
		1, 0,
		0.9, 0.1,
		0, 1,
	})
	cat := catalog.New([]core.Product{
		{ID: "sofa-1", Category: "sofa", Brand: "acme"},
		{ID: "sofa-2", Category: "sofa", Brand: "acme"},
		{ID: "lamp-1", Category: "lamp", Brand: "cove"},
	})

	r := homerec.NewRanker(emb, cat, nil)
	ids, _ := r.Rank(context.Background(), &core.RecommendContext{History: []string{"sofa-1"}})
	fmt.Println(ids)
	// Output: [sofa-2 lamp-1]
}
