package api

import (
	"context"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// OrderItem is a line of a placed order.
type OrderItem struct {
	ID          int            `json:"id"`
	ProductID   string         `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	UnitPrice   int            `json:"unit_price"`
	Subtotal    int            `json:"subtotal"`
	Options     map[string]any `json:"options,omitempty"`
}

// Order is a placed order. Status values are listed in package content.
type Order struct {
	ID              int         `json:"id"`
	OrderNumber     string      `json:"order_number"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items,omitempty"`
	Subtotal        int         `json:"subtotal"`
	ShippingFee     int         `json:"shipping_fee"`
	Tax             int         `json:"tax"`
	Total           int         `json:"total"`
	PaymentMethod   string      `json:"payment_method,omitempty"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
}

// CreateOrderInput checks out the current cart.
type CreateOrderInput struct {
	ShippingAddressID int    `json:"shipping_address_id"`
	PaymentMethod     string `json:"payment_method"`
	Notes             string `json:"notes,omitempty"`
}

// CancelOrderInput cancels an order that has not shipped.
type CancelOrderInput struct {
	OrderID int    `json:"-"`
	Reason  string `json:"reason,omitempty"`
}

// LinkUploadsInput attaches previously uploaded design files to an order.
type LinkUploadsInput struct {
	OrderID   int   `json:"-"`
	UploadIDs []int `json:"upload_ids"`
}

// OrderAPI is /api/orders.
type OrderAPI struct {
	client *apiclient.Client
}

func (a *OrderAPI) List(ctx context.Context, params ListParams) (Page[Order], error) {
	return apiclient.Get[Page[Order]](ctx, a.client, "/api/orders", params.Values())
}

func (a *OrderAPI) Get(ctx context.Context, id int) (Order, error) {
	return apiclient.Get[Order](ctx, a.client, "/api/orders/"+itoa(id), nil)
}

func (a *OrderAPI) Create(ctx context.Context, in CreateOrderInput) (Order, error) {
	return apiclient.Post[Order](ctx, a.client, "/api/orders", in)
}

func (a *OrderAPI) Cancel(ctx context.Context, in CancelOrderInput) (Order, error) {
	return apiclient.Post[Order](ctx, a.client, "/api/orders/"+itoa(in.OrderID)+"/cancel", in)
}

// ListUploads returns the design files linked to an order.
func (a *OrderAPI) ListUploads(ctx context.Context, orderID int) ([]Upload, error) {
	out, err := apiclient.Get[uploadList](ctx, a.client, "/api/orders/"+itoa(orderID)+"/uploads", nil)
	return out.Uploads, err
}

func (a *OrderAPI) LinkUploads(ctx context.Context, in LinkUploadsInput) ([]Upload, error) {
	out, err := apiclient.Post[uploadList](ctx, a.client, "/api/orders/"+itoa(in.OrderID)+"/uploads", in)
	return out.Uploads, err
}
