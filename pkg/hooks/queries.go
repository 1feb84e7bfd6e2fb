package hooks

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
)

func (h *Hooks) UseAddresses() *query.Observer[[]api.Address] {
	return observe(h, Keys.Addresses(), h.api.Addresses.List, nil, 0)
}

func (h *Hooks) UseCart() *query.Observer[api.Cart] {
	return observe(h, Keys.Cart(), h.api.Cart.Get, nil, 0)
}

func (h *Hooks) UseOrders(params api.ListParams) *query.Observer[api.Page[api.Order]] {
	return observe(h, Keys.OrderList(params), func(ctx context.Context) (api.Page[api.Order], error) {
		return h.api.Orders.List(ctx, params)
	}, nil, 0)
}

// UseOrder is disabled until id is a valid order id.
func (h *Hooks) UseOrder(id int) *query.Observer[api.Order] {
	return observe(h, Keys.Order(id), func(ctx context.Context) (api.Order, error) {
		return h.api.Orders.Get(ctx, id)
	}, positive(id), 0)
}

func (h *Hooks) UseOrderUploads(orderID int) *query.Observer[[]api.Upload] {
	return observe(h, Keys.OrderUploads(orderID), func(ctx context.Context) ([]api.Upload, error) {
		return h.api.Orders.ListUploads(ctx, orderID)
	}, positive(orderID), 0)
}

func (h *Hooks) UseProducts(params api.ProductListParams) *query.Observer[[]api.Product] {
	return observe(h, Keys.ProductList(params), func(ctx context.Context) ([]api.Product, error) {
		return h.api.Products.List(ctx, params)
	}, nil, catalogueStaleTime)
}

func (h *Hooks) UseProduct(id string) *query.Observer[api.Product] {
	return observe(h, Keys.Product(id), func(ctx context.Context) (api.Product, error) {
		return h.api.Products.Get(ctx, id)
	}, nonEmpty(id), catalogueStaleTime)
}

func (h *Hooks) UseProductMasters() *query.Observer[[]api.ProductMaster] {
	return observe(h, Keys.ProductMasters(), h.api.Products.ListMasters, nil, catalogueStaleTime)
}

func (h *Hooks) UseUploads() *query.Observer[[]api.Upload] {
	return observe(h, Keys.Uploads(), h.api.Uploads.List, nil, 0)
}

func (h *Hooks) UseAdminAuthStatus() *query.Observer[api.AdminAuthStatus] {
	return observe(h, Keys.AdminAuth(), h.api.AdminAuth.Status, nil, authStaleTime)
}

func (h *Hooks) UseAdminDashboard() *query.Observer[api.DashboardSummary] {
	return observe(h, Keys.AdminDashboard(), h.api.AdminDashboard.Summary, nil, 0)
}

// UseAdminDashboardStats is disabled until a period ("week", "month", ...) is chosen.
func (h *Hooks) UseAdminDashboardStats(period string) *query.Observer[api.DashboardStats] {
	return observe(h, Keys.AdminDashboardStats(period), func(ctx context.Context) (api.DashboardStats, error) {
		return h.api.AdminDashboard.Stats(ctx, period)
	}, nonEmpty(period), 0)
}

func (h *Hooks) UseAdminLogs(params api.ListParams) *query.Observer[api.Page[api.AdminLog]] {
	return observe(h, Keys.AdminLogs(params), func(ctx context.Context) (api.Page[api.AdminLog], error) {
		return h.api.AdminLogs.List(ctx, params)
	}, nil, 0)
}

func (h *Hooks) UseAdminUsers(params api.ListParams) *query.Observer[api.Page[api.User]] {
	return observe(h, Keys.AdminUserList(params), func(ctx context.Context) (api.Page[api.User], error) {
		return h.api.AdminUsers.List(ctx, params)
	}, nil, 0)
}

func (h *Hooks) UseAdminUser(id int) *query.Observer[api.User] {
	return observe(h, Keys.AdminUser(id), func(ctx context.Context) (api.User, error) {
		return h.api.AdminUsers.Get(ctx, id)
	}, positive(id), 0)
}

func (h *Hooks) UseAdminUserOrders(userID int, params api.ListParams) *query.Observer[api.Page[api.Order]] {
	return observe(h, Keys.AdminUserOrderList(userID, params), func(ctx context.Context) (api.Page[api.Order], error) {
		return h.api.AdminUsers.ListOrders(ctx, userID, params)
	}, positive(userID), 0)
}

func (h *Hooks) UseAdminOrders(params api.ListParams) *query.Observer[api.Page[api.Order]] {
	return observe(h, Keys.AdminOrderList(params), func(ctx context.Context) (api.Page[api.Order], error) {
		return h.api.AdminOrders.List(ctx, params)
	}, nil, 0)
}

func (h *Hooks) UseAdminOrder(id int) *query.Observer[api.Order] {
	return observe(h, Keys.AdminOrder(id), func(ctx context.Context) (api.Order, error) {
		return h.api.AdminOrders.Get(ctx, id)
	}, positive(id), 0)
}

func (h *Hooks) UseAdminProductMasters() *query.Observer[[]api.ProductMaster] {
	return observe(h, Keys.AdminProductMasters(), h.api.AdminProducts.ListMasters, nil, 0)
}
