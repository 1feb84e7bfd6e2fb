package api

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// UpdateOrderStatusInput moves an order through fulfilment.
type UpdateOrderStatusInput struct {
	OrderID int    `json:"-"`
	Status  string `json:"status"`
	Note    string `json:"note,omitempty"`
}

// AdminOrderAPI is /api/admin/orders.
type AdminOrderAPI struct {
	client *apiclient.Client
}

func (a *AdminOrderAPI) List(ctx context.Context, params ListParams) (Page[Order], error) {
	return apiclient.Get[Page[Order]](ctx, a.client, "/api/admin/orders", params.Values())
}

func (a *AdminOrderAPI) Get(ctx context.Context, id int) (Order, error) {
	return apiclient.Get[Order](ctx, a.client, "/api/admin/orders/"+itoa(id), nil)
}

func (a *AdminOrderAPI) UpdateStatus(ctx context.Context, in UpdateOrderStatusInput) (Order, error) {
	return apiclient.Patch[Order](ctx, a.client, "/api/admin/orders/"+itoa(in.OrderID)+"/status", in)
}
