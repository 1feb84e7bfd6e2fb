package query_test

import (
	"strings"
	"testing"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listParams struct {
	Page   int    `json:"page,omitempty"`
	Status string `json:"status,omitempty"`
}

func TestKey_Canonical(t *testing.T) {
	t.Run("Structs and maps with the same shape are equal", func(t *testing.T) {
		a := query.K("orders", listParams{Page: 2, Status: "pending"})
		b := query.K("orders", map[string]any{"status": "pending", "page": 2})

		assert.Equal(t, a.String(), b.String())
		assert.Equal(t, `["orders",{"page":2,"status":"pending"}]`, a.String())
	})

	t.Run("Numbers and numeric strings differ", func(t *testing.T) {
		assert.NotEqual(t, query.K("order", 5).String(), query.K("order", "5").String())
	})

	t.Run("Nil segment", func(t *testing.T) {
		assert.Equal(t, `["cart",null]`, query.K("cart", nil).String())
	})

	t.Run("Large integers inside parameters stay distinct", func(t *testing.T) {
		type byUser struct {
			UserID int64 `json:"user_id"`
		}
		a := query.K("orders", byUser{UserID: 9007199254740993})
		b := query.K("orders", byUser{UserID: 9007199254740992})

		assert.NotEqual(t, a.String(), b.String())
		assert.Equal(t, `["orders",{"user_id":9007199254740993}]`, a.String())
	})
}

func TestKey_StoreKey(t *testing.T) {
	masters := query.K("productMasters")

	assert.True(t, strings.HasPrefix(query.K("productMasters", listParams{Page: 2}).StoreKey(), masters.StoreKey()))
	assert.False(t, strings.HasPrefix(query.K("productMastersArchive").StoreKey(), masters.StoreKey()))
}

func TestKey_HasPrefix(t *testing.T) {
	key := query.K("admin", "productMasters", listParams{Page: 1})

	assert.True(t, key.HasPrefix(query.K("admin")))
	assert.True(t, key.HasPrefix(query.K("admin", "productMasters")))
	assert.True(t, key.HasPrefix(key))
	assert.True(t, key.HasPrefix(query.K()))
	assert.False(t, key.HasPrefix(query.K("productMasters")))
	assert.False(t, query.K("admin").HasPrefix(key))
}

func TestParseKey(t *testing.T) {
	// Arrange
	original := query.K("order", 12, "uploads", map[string]any{"type": "design"})

	// Act
	parsed, err := query.ParseKey(original.Canonical())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, original.String(), parsed.String())
	assert.True(t, parsed.HasPrefix(query.K("order", 12)))

	_, err = query.ParseKey([]string{`"orders"`, `{broken`})
	assert.Error(t, err)
}
