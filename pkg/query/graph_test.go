package query_test

import (
	"testing"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/stretchr/testify/assert"
)

func TestGraph(t *testing.T) {
	// Arrange
	g := query.NewGraph().
		Declare("createOrder", query.K("orders"), query.K("cart")).
		Declare("cancelOrder", query.K("orders")).
		Declare("createOrder", query.K("cart"))

	// Act
	targets := g.Targets("createOrder")

	// Assert
	assert.Len(t, targets, 2, "duplicate declarations are ignored")
	assert.Equal(t, []string{"cancelOrder", "createOrder"}, g.Mutations())
	assert.Len(t, g.Edges(), 3)
	assert.Equal(t, []string{"cancelOrder", "createOrder"}, g.Affecting(query.K("orders", map[string]any{"page": 1})))
	assert.Equal(t, []string{"createOrder"}, g.Affecting(query.K("cart")))
	assert.Empty(t, g.Affecting(query.K("addresses")))
	assert.Empty(t, g.Targets("unknown"))

	targets[0] = query.K("mutated")
	assert.Equal(t, `["orders"]`, g.Targets("createOrder")[0].String(), "Targets returns a copy")
}
