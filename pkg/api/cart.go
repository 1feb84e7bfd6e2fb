package api

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// CartItem is one configured product in the cart.
type CartItem struct {
	ID          int            `json:"id"`
	ProductID   string         `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	UnitPrice   int            `json:"unit_price"`
	Subtotal    int            `json:"subtotal"`
	Options     map[string]any `json:"options,omitempty"`
}

// Cart is the current user's cart with totals in yen.
type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  int        `json:"subtotal"`
	Tax       int        `json:"tax"`
	Total     int        `json:"total"`
}

// AddCartItemInput adds a product with its fabrication options.
type AddCartItemInput struct {
	ProductID string         `json:"product_id"`
	Quantity  int            `json:"quantity"`
	Options   map[string]any `json:"options,omitempty"`
}

// UpdateCartItemInput changes the quantity of one cart line.
type UpdateCartItemInput struct {
	ItemID   int `json:"-"`
	Quantity int `json:"quantity"`
}

// CartAPI is /api/carts.
type CartAPI struct {
	client *apiclient.Client
}

func (a *CartAPI) Get(ctx context.Context) (Cart, error) {
	return apiclient.Get[Cart](ctx, a.client, "/api/carts", nil)
}

func (a *CartAPI) AddItem(ctx context.Context, in AddCartItemInput) (Cart, error) {
	return apiclient.Post[Cart](ctx, a.client, "/api/carts/items", in)
}

func (a *CartAPI) UpdateItem(ctx context.Context, in UpdateCartItemInput) (Cart, error) {
	return apiclient.Put[Cart](ctx, a.client, "/api/carts/items/"+itoa(in.ItemID), in)
}

func (a *CartAPI) RemoveItem(ctx context.Context, itemID int) (Cart, error) {
	return apiclient.Delete[Cart](ctx, a.client, "/api/carts/items/"+itoa(itemID))
}

func (a *CartAPI) Clear(ctx context.Context) (Message, error) {
	return apiclient.Delete[Message](ctx, a.client, "/api/carts")
}
