package hooks

import "github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"

// Mutation names. Each is an edge source in the invalidation graph.
const (
	MutCreateAddress     = "createAddress"
	MutUpdateAddress     = "updateAddress"
	MutDeleteAddress     = "deleteAddress"
	MutSetDefaultAddress = "setDefaultAddress"

	MutAddCartItem    = "addCartItem"
	MutUpdateCartItem = "updateCartItem"
	MutRemoveCartItem = "removeCartItem"
	MutClearCart      = "clearCart"

	MutCreateOrder      = "createOrder"
	MutCancelOrder      = "cancelOrder"
	MutLinkOrderUploads = "linkOrderUploads"

	MutCreateUpload   = "createUpload"
	MutRegisterUpload = "registerUpload"
	MutDeleteUpload   = "deleteUpload"
	MutUploadDesign   = "uploadDesign"

	MutCreatePaymentIntent = "createPaymentIntent"
	MutConfirmPayment      = "confirmPayment"

	MutAdminLogin             = "adminLogin"
	MutAdminLogout            = "adminLogout"
	MutAdminUpdateOrderStatus = "adminUpdateOrderStatus"
	MutAdminCreateMaster      = "adminCreateProductMaster"
	MutAdminUpdateMaster      = "adminUpdateProductMaster"
	MutAdminDeleteMaster      = "adminDeleteProductMaster"
)

// NewGraph returns the invalidation graph of the whole application.
func NewGraph() *query.Graph {
	return declare(query.NewGraph())
}

// declare adds every edge to g. Edges that depend on the mutation input, such
// as ["order", id], are added by the mutation hooks themselves.
func declare(g *query.Graph) *query.Graph {
	for _, name := range []string{MutCreateAddress, MutUpdateAddress, MutDeleteAddress, MutSetDefaultAddress} {
		g.Declare(name, Keys.Addresses())
	}
	for _, name := range []string{MutAddCartItem, MutUpdateCartItem, MutRemoveCartItem, MutClearCart} {
		g.Declare(name, Keys.Cart())
	}

	// Checkout empties the cart.
	g.Declare(MutCreateOrder, Keys.Orders(), Keys.Cart())
	g.Declare(MutCancelOrder, Keys.Orders())
	g.Declare(MutLinkOrderUploads, Keys.Uploads())

	for _, name := range []string{MutCreateUpload, MutRegisterUpload, MutDeleteUpload, MutUploadDesign} {
		g.Declare(name, Keys.Uploads())
	}

	g.Declare(MutCreatePaymentIntent)
	g.Declare(MutConfirmPayment, Keys.Orders(), Keys.Cart())

	g.Declare(MutAdminLogin, Keys.AdminAuth())
	g.Declare(MutAdminLogout, Keys.AdminAuth())
	g.Declare(MutAdminUpdateOrderStatus, Keys.AdminOrders(), Keys.AdminUserOrders(), Keys.AdminDashboard())

	for _, name := range []string{MutAdminCreateMaster, MutAdminUpdateMaster, MutAdminDeleteMaster} {
		g.Declare(name, Keys.AdminProductMasters(), Keys.ProductMasters())
	}
	return g
}

// SharedPrefixes are keys whose data is the same for every session: the
// public catalogue and the console views other than the admin's own auth
// status. Their invalidations are applied to all sessions, not just the
// mutating one.
func SharedPrefixes() []query.Key {
	return append([]query.Key{Keys.Products(), query.K("product"), Keys.ProductMasters()}, consolePrefixes()...)
}

// consolePrefixes covers every console view except the auth status.
func consolePrefixes() []query.Key {
	return []query.Key{
		Keys.AdminDashboard(),
		Keys.AdminOrders(),
		Keys.AdminUsers(),
		query.K("admin", "user"),
		Keys.AdminUserOrders(),
		query.K("admin", "logs"),
		Keys.AdminProductMasters(),
	}
}

// IsShared reports whether prefix addresses data shared by every session.
func IsShared(prefix query.Key) bool {
	for _, shared := range SharedPrefixes() {
		if prefix.HasPrefix(shared) {
			return true
		}
	}
	return false
}
