package hooks

import (
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
)

// keyFactory builds every query key used by the storefront and the console.
// Related keys share a prefix so one invalidation reaches all of them: Orders()
// is the prefix of every OrderList(params), Order(id) the prefix of
// OrderUploads(id), and so on.
type keyFactory struct{}

// Keys is the key factory.
var Keys keyFactory

func (keyFactory) Addresses() query.Key { return query.K("addresses") }
func (keyFactory) Cart() query.Key      { return query.K("cart") }

func (keyFactory) Orders() query.Key                         { return query.K("orders") }
func (keyFactory) OrderList(params api.ListParams) query.Key { return query.K("orders", params) }
func (keyFactory) Order(id int) query.Key                    { return query.K("order", id) }
func (keyFactory) OrderUploads(id int) query.Key             { return query.K("order", id, "uploads") }

func (keyFactory) Products() query.Key                                { return query.K("products") }
func (keyFactory) ProductList(params api.ProductListParams) query.Key { return query.K("products", params) }
func (keyFactory) Product(id string) query.Key                        { return query.K("product", id) }
func (keyFactory) ProductMasters() query.Key                          { return query.K("productMasters") }
func (keyFactory) Uploads() query.Key                                 { return query.K("uploads") }

func (keyFactory) AdminAuth() query.Key                        { return query.K("admin", "auth") }
func (keyFactory) AdminDashboard() query.Key                   { return query.K("admin", "dashboard") }
func (keyFactory) AdminDashboardStats(period string) query.Key { return query.K("admin", "dashboard", "stats", period) }
func (keyFactory) AdminLogs(params api.ListParams) query.Key   { return query.K("admin", "logs", params) }

func (keyFactory) AdminUsers() query.Key                                          { return query.K("admin", "users") }
func (keyFactory) AdminUserList(params api.ListParams) query.Key                  { return query.K("admin", "users", params) }
func (keyFactory) AdminUser(id int) query.Key                                     { return query.K("admin", "user", id) }
func (keyFactory) AdminUserOrders() query.Key                                     { return query.K("admin-user-orders") }
func (keyFactory) AdminUserOrderList(userID int, params api.ListParams) query.Key { return query.K("admin-user-orders", userID, params) }

func (keyFactory) AdminOrders() query.Key                         { return query.K("admin", "orders") }
func (keyFactory) AdminOrderList(params api.ListParams) query.Key { return query.K("admin", "orders", params) }
func (keyFactory) AdminOrder(id int) query.Key                    { return query.K("admin", "orders", "detail", id) }
func (keyFactory) AdminProductMasters() query.Key                 { return query.K("admin", "productMasters") }
