package hooks

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
)

// --- addresses ---

func (h *Hooks) UseCreateAddress() *query.Mutation[api.AddressInput, api.Address] {
	return mutation(h, MutCreateAddress, h.api.Addresses.Create, nil)
}

func (h *Hooks) UseUpdateAddress() *query.Mutation[api.UpdateAddressInput, api.Address] {
	return mutation(h, MutUpdateAddress, h.api.Addresses.Update, nil)
}

func (h *Hooks) UseDeleteAddress() *query.Mutation[int, api.Message] {
	return mutation(h, MutDeleteAddress, h.api.Addresses.Delete, nil)
}

func (h *Hooks) UseSetDefaultAddress() *query.Mutation[int, api.Address] {
	return mutation(h, MutSetDefaultAddress, h.api.Addresses.SetDefault, nil)
}

// --- cart ---

func (h *Hooks) UseAddCartItem() *query.Mutation[api.AddCartItemInput, api.Cart] {
	return mutation(h, MutAddCartItem, h.api.Cart.AddItem, nil)
}

func (h *Hooks) UseUpdateCartItem() *query.Mutation[api.UpdateCartItemInput, api.Cart] {
	return mutation(h, MutUpdateCartItem, h.api.Cart.UpdateItem, nil)
}

func (h *Hooks) UseRemoveCartItem() *query.Mutation[int, api.Cart] {
	return mutation(h, MutRemoveCartItem, h.api.Cart.RemoveItem, nil)
}

func (h *Hooks) UseClearCart() *query.Mutation[struct{}, api.Message] {
	return mutation(h, MutClearCart, func(ctx context.Context, _ struct{}) (api.Message, error) {
		return h.api.Cart.Clear(ctx)
	}, nil)
}

// --- orders ---

func (h *Hooks) UseCreateOrder() *query.Mutation[api.CreateOrderInput, api.Order] {
	return mutation(h, MutCreateOrder, h.api.Orders.Create, nil)
}

func (h *Hooks) UseCancelOrder() *query.Mutation[api.CancelOrderInput, api.Order] {
	return mutation(h, MutCancelOrder, h.api.Orders.Cancel, func(in api.CancelOrderInput, _ api.Order) []query.Key {
		return []query.Key{Keys.Order(in.OrderID)}
	})
}

func (h *Hooks) UseLinkOrderUploads() *query.Mutation[api.LinkUploadsInput, []api.Upload] {
	return mutation(h, MutLinkOrderUploads, h.api.Orders.LinkUploads, func(in api.LinkUploadsInput, _ []api.Upload) []query.Key {
		return []query.Key{Keys.OrderUploads(in.OrderID)}
	})
}

// --- uploads ---

func (h *Hooks) UseCreateUpload() *query.Mutation[api.CreateUploadInput, api.Upload] {
	return mutation(h, MutCreateUpload, h.api.Uploads.Create, nil)
}

func (h *Hooks) UseRegisterUpload() *query.Mutation[api.RegisterUploadInput, api.Upload] {
	return mutation(h, MutRegisterUpload, h.api.Uploads.Register, nil)
}

func (h *Hooks) UseDeleteUpload() *query.Mutation[int, api.Message] {
	return mutation(h, MutDeleteUpload, h.api.Uploads.Delete, nil)
}

// --- payments ---

func (h *Hooks) UseCreatePaymentIntent() *query.Mutation[api.CreatePaymentIntentInput, api.PaymentIntent] {
	return mutation(h, MutCreatePaymentIntent, h.api.Payments.CreateIntent, nil)
}

func (h *Hooks) UseConfirmPayment() *query.Mutation[api.ConfirmPaymentInput, api.PaymentResult] {
	return mutation(h, MutConfirmPayment, h.api.Payments.Confirm, func(in api.ConfirmPaymentInput, _ api.PaymentResult) []query.Key {
		return []query.Key{Keys.Order(in.OrderID)}
	})
}

// --- admin ---

func (h *Hooks) UseAdminLogin() *query.Mutation[api.AdminLoginInput, api.AdminAuthStatus] {
	return mutation(h, MutAdminLogin, h.api.AdminAuth.Login, nil)
}

// UseAdminLogout also drops every cached console view so the next admin to
// sign in on this session starts empty.
func (h *Hooks) UseAdminLogout() *query.Mutation[struct{}, api.Message] {
	return query.NewMutation(h.client, query.MutationOptions[struct{}, api.Message]{
		Name: MutAdminLogout,
		Mutate: func(ctx context.Context, _ struct{}) (api.Message, error) {
			return h.api.AdminAuth.Logout(ctx)
		},
		OnSuccess: func(struct{}, api.Message) {
			for _, prefix := range consolePrefixes() {
				h.client.Remove(prefix)
			}
		},
	})
}

func (h *Hooks) UseAdminUpdateOrderStatus() *query.Mutation[api.UpdateOrderStatusInput, api.Order] {
	return mutation(h, MutAdminUpdateOrderStatus, h.api.AdminOrders.UpdateStatus, nil)
}

func (h *Hooks) UseAdminCreateProductMaster() *query.Mutation[api.ProductMasterInput, api.ProductMaster] {
	return mutation(h, MutAdminCreateMaster, h.api.AdminProducts.CreateMaster, nil)
}

func (h *Hooks) UseAdminUpdateProductMaster() *query.Mutation[api.UpdateProductMasterInput, api.ProductMaster] {
	return mutation(h, MutAdminUpdateMaster, h.api.AdminProducts.UpdateMaster, nil)
}

func (h *Hooks) UseAdminDeleteProductMaster() *query.Mutation[int, api.Message] {
	return mutation(h, MutAdminDeleteMaster, h.api.AdminProducts.DeleteMaster, nil)
}
