package hooks_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/uploadstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend is a fake REST API. Each route answers with the result of its
// handler, which receives the call number of that route starting at 1.
type backend struct {
	mu     sync.Mutex
	calls  map[string]int
	routes map[string]func(n int) (int, any)
	// gates hold every call of a route after the first until the channel is closed.
	gates map[string]chan struct{}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	route := req.Method + " " + req.URL.Path
	b.mu.Lock()
	b.calls[route]++
	n := b.calls[route]
	handler, ok := b.routes[route]
	gate := b.gates[route]
	b.mu.Unlock()

	if gate != nil && n > 1 {
		<-gate
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
		return
	}
	status, body := handler(n)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func reply(body any) func(int) (int, any) {
	return func(int) (int, any) { return http.StatusOK, body }
}

func newHooks(t *testing.T, b *backend, opts ...hooks.Option) *hooks.Hooks {
	t.Helper()
	if b.calls == nil {
		b.calls = map[string]int{}
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	ac, err := apiclient.New(&apiclient.Config{BaseURL: srv.URL}, nil, zerolog.Nop())
	require.NoError(t, err)
	client := query.NewClient(nil, zerolog.Nop())
	t.Cleanup(func() { _ = client.Close() })
	return hooks.New(client, api.New(ac), zerolog.Nop(), opts...)
}

func await[T any](t *testing.T, o *query.Observer[T]) query.Result[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r, err := o.Await(ctx)
	require.NoError(t, err)
	return r
}

func TestGraph_DeclaresEveryMutation(t *testing.T) {
	g := hooks.NewGraph()

	names := []string{
		hooks.MutCreateAddress, hooks.MutUpdateAddress, hooks.MutDeleteAddress, hooks.MutSetDefaultAddress,
		hooks.MutAddCartItem, hooks.MutUpdateCartItem, hooks.MutRemoveCartItem, hooks.MutClearCart,
		hooks.MutCreateOrder, hooks.MutCancelOrder, hooks.MutLinkOrderUploads,
		hooks.MutCreateUpload, hooks.MutRegisterUpload, hooks.MutDeleteUpload, hooks.MutUploadDesign,
		hooks.MutCreatePaymentIntent, hooks.MutConfirmPayment,
		hooks.MutAdminLogin, hooks.MutAdminLogout, hooks.MutAdminUpdateOrderStatus,
		hooks.MutAdminCreateMaster, hooks.MutAdminUpdateMaster, hooks.MutAdminDeleteMaster,
	}
	assert.ElementsMatch(t, names, g.Mutations())

	for _, name := range names {
		if name == hooks.MutCreatePaymentIntent {
			assert.Empty(t, g.Targets(name), "a payment intent changes no cached view")
			continue
		}
		assert.NotEmpty(t, g.Targets(name), name)
	}

	assert.ElementsMatch(t, []query.Key{hooks.Keys.Orders(), hooks.Keys.Cart()}, g.Targets(hooks.MutCreateOrder))
	assert.ElementsMatch(t, []query.Key{hooks.Keys.AdminProductMasters(), hooks.Keys.ProductMasters()}, g.Targets(hooks.MutAdminUpdateMaster))
	assert.Contains(t, g.Affecting(hooks.Keys.Order(7)), hooks.MutCancelOrder)
}

func TestKeys_AreRelatedByPrefix(t *testing.T) {
	assert.Equal(t, query.K("admin", "productMasters"), hooks.Keys.AdminProductMasters())
	assert.Equal(t, query.K("productMasters"), hooks.Keys.ProductMasters())
	assert.True(t, hooks.Keys.OrderList(api.ListParams{Page: 2}).HasPrefix(hooks.Keys.Orders()))
	assert.True(t, hooks.Keys.OrderUploads(3).HasPrefix(hooks.Keys.Order(3)))
	assert.False(t, hooks.Keys.Order(3).HasPrefix(hooks.Keys.Orders()))
	assert.Equal(t, hooks.Keys.OrderList(api.ListParams{Page: 1, Limit: 10}), hooks.Keys.OrderList(api.ListParams{Limit: 10, Page: 1}))
}

func TestIsShared(t *testing.T) {
	assert.True(t, hooks.IsShared(hooks.Keys.ProductMasters()))
	assert.True(t, hooks.IsShared(hooks.Keys.Product("acrylic-stand")))
	assert.True(t, hooks.IsShared(hooks.Keys.AdminOrder(4)))
	assert.False(t, hooks.IsShared(hooks.Keys.AdminAuth()))
	assert.False(t, hooks.IsShared(hooks.Keys.Cart()))
	assert.False(t, hooks.IsShared(hooks.Keys.Orders()))
}

func TestUseCreateOrder_RefetchesOrdersAndCart(t *testing.T) {
	// Arrange
	ctx := context.Background()
	gate := make(chan struct{})
	b := &backend{
		routes: map[string]func(int) (int, any){
			"GET /api/orders": func(n int) (int, any) {
				return http.StatusOK, api.Page[api.Order]{Items: make([]api.Order, n-1), Total: n - 1}
			},
			"GET /api/carts": func(n int) (int, any) {
				if n == 1 {
					return http.StatusOK, api.Cart{ItemCount: 2, Total: 3300}
				}
				return http.StatusOK, api.Cart{}
			},
			"POST /api/orders": reply(api.Order{ID: 1, Status: "pending"}),
		},
		gates: map[string]chan struct{}{"GET /api/orders": gate, "GET /api/carts": gate},
	}
	h := newHooks(t, b)
	orders := h.UseOrders(api.ListParams{})
	defer orders.Close()
	cart := h.UseCart()
	defer cart.Close()
	require.Equal(t, 0, await(t, orders).Data.Total)
	require.Equal(t, 2, await(t, cart).Data.ItemCount)

	// Act
	order, err := h.UseCreateOrder().MutateAsync(ctx, api.CreateOrderInput{ShippingAddressID: 1, PaymentMethod: "credit_card"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, order.ID)
	assert.True(t, orders.Result().IsLoading)
	assert.True(t, orders.Result().IsFetching, "previous data stays visible while refetching")
	assert.True(t, cart.Result().IsLoading)

	close(gate)
	assert.Equal(t, 1, await(t, orders).Data.Total)
	assert.Equal(t, 0, await(t, cart).Data.ItemCount)
	assert.Equal(t, 2, b.count("GET /api/orders"))
	assert.Equal(t, 2, b.count("GET /api/carts"))
}

func TestUseCreateOrder_FailureMarksNothingStale(t *testing.T) {
	// Arrange
	ctx := context.Background()
	b := &backend{routes: map[string]func(int) (int, any){
		"GET /api/orders": reply(api.Page[api.Order]{}),
		"POST /api/orders": func(int) (int, any) {
			return http.StatusConflict, map[string]string{"detail": "カートが空です"}
		},
	}}
	h := newHooks(t, b)
	orders := h.UseOrders(api.ListParams{})
	defer orders.Close()
	await(t, orders)
	mut := h.UseCreateOrder()

	// Act
	_, err := mut.MutateAsync(ctx, api.CreateOrderInput{})

	// Assert
	require.Error(t, err)
	assert.True(t, apiclient.IsStatus(err, http.StatusConflict))
	assert.Equal(t, query.MutationError, mut.Result().Status)
	assert.False(t, h.Client().IsInvalidated(hooks.Keys.OrderList(api.ListParams{})))
	assert.False(t, orders.Result().IsLoading)
	assert.Equal(t, 1, b.count("GET /api/orders"))
}

func TestUseOrder_GuardedByValidID(t *testing.T) {
	// Arrange
	b := &backend{routes: map[string]func(int) (int, any){}}
	h := newHooks(t, b)

	// Act
	o := h.UseOrder(0)
	defer o.Close()

	// Assert
	assert.Equal(t, query.StatusIdle, o.Result().Status)
	assert.False(t, o.Result().IsLoading)
	assert.ErrorIs(t, o.Refetch(context.Background()), query.ErrDisabled)
	assert.Zero(t, b.total(), "a disabled query must not reach the API")
}

func TestUseProduct_ConcurrentObserversShareOneCall(t *testing.T) {
	// Arrange
	gate := make(chan struct{})
	b := &backend{routes: map[string]func(int) (int, any){
		"GET /api/products/acrylic-stand": func(int) (int, any) {
			<-gate
			return http.StatusOK, api.Product{ID: "acrylic-stand", Name: "アクリルスタンド"}
		},
	}}
	h := newHooks(t, b)

	// Act
	first := h.UseProduct("acrylic-stand")
	defer first.Close()
	second := h.UseProduct("acrylic-stand")
	defer second.Close()
	close(gate)

	// Assert
	assert.Equal(t, "アクリルスタンド", await(t, first).Data.Name)
	assert.Equal(t, "アクリルスタンド", await(t, second).Data.Name)
	assert.Equal(t, 1, b.count("GET /api/products/acrylic-stand"))
}

func TestUseAdminUpdateProductMaster_InvalidatesBothMasterLists(t *testing.T) {
	// Arrange
	ctx := context.Background()
	b := &backend{routes: map[string]func(int) (int, any){
		"PUT /api/admin/masters/5": reply(api.ProductMaster{ID: 5, Name: "QRコードスタンド"}),
	}}
	h := newHooks(t, b)
	c := h.Client()
	require.NoError(t, query.SetQueryData(c, hooks.Keys.AdminProductMasters(), []api.ProductMaster{{ID: 5}}))
	require.NoError(t, query.SetQueryData(c, hooks.Keys.ProductMasters(), []api.ProductMaster{{ID: 5}}))
	require.NoError(t, query.SetQueryData(c, hooks.Keys.Cart(), api.Cart{}))

	// Act
	_, err := h.UseAdminUpdateProductMaster().MutateAsync(ctx, api.UpdateProductMasterInput{MasterID: "5", Data: api.ProductMasterInput{Name: "QRコードスタンド"}})

	// Assert
	require.NoError(t, err)
	assert.True(t, c.IsInvalidated(hooks.Keys.AdminProductMasters()))
	assert.True(t, c.IsInvalidated(hooks.Keys.ProductMasters()))
	assert.False(t, c.IsInvalidated(hooks.Keys.Cart()))
}

func TestUseCancelOrder_InvalidatesTheOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	b := &backend{routes: map[string]func(int) (int, any){
		"POST /api/orders/9/cancel": reply(api.Order{ID: 9, Status: "cancelled"}),
	}}
	h := newHooks(t, b)
	c := h.Client()
	require.NoError(t, query.SetQueryData(c, hooks.Keys.Order(9), api.Order{ID: 9}))
	require.NoError(t, query.SetQueryData(c, hooks.Keys.Order(10), api.Order{ID: 10}))

	// Act
	_, err := h.UseCancelOrder().MutateAsync(ctx, api.CancelOrderInput{OrderID: 9})

	// Assert
	require.NoError(t, err)
	assert.True(t, c.IsInvalidated(hooks.Keys.Order(9)))
	assert.False(t, c.IsInvalidated(hooks.Keys.Order(10)))
}

func TestUseAdminLogout_DropsConsoleViews(t *testing.T) {
	// Arrange
	ctx := context.Background()
	b := &backend{routes: map[string]func(int) (int, any){
		"POST /api/admin/auth/logout": reply(api.Message{Message: "ok"}),
	}}
	h := newHooks(t, b)
	c := h.Client()
	require.NoError(t, query.SetQueryData(c, hooks.Keys.AdminDashboard(), api.DashboardSummary{}))
	require.NoError(t, query.SetQueryData(c, hooks.Keys.ProductMasters(), []api.ProductMaster{}))

	// Act
	_, err := h.UseAdminLogout().MutateAsync(ctx, struct{}{})

	// Assert
	require.NoError(t, err)
	_, found := query.GetQueryData[api.DashboardSummary](c, hooks.Keys.AdminDashboard())
	assert.False(t, found)
	_, found = query.GetQueryData[[]api.ProductMaster](c, hooks.Keys.ProductMasters())
	assert.True(t, found)
}

// fakeObjectStore is an in-memory hooks.ObjectStore.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string]string
	putErr  error
}

func (s *fakeObjectStore) Put(_ context.Context, fileName, contentType string, content io.Reader) (uploadstore.Object, error) {
	if s.putErr != nil {
		return uploadstore.Object{}, s.putErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return uploadstore.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := "designs/" + fileName
	s.objects[path] = string(data)
	return uploadstore.Object{Path: path, FileName: fileName, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[objectPath]; !ok {
		return errors.New("no such object")
	}
	delete(s.objects, objectPath)
	return nil
}

func TestUseUploadDesign(t *testing.T) {
	ctx := context.Background()
	upload := api.Upload{ID: 31, FileName: "logo.ai"}

	t.Run("Stores, registers and links through the object store", func(t *testing.T) {
		// Arrange
		b := &backend{routes: map[string]func(int) (int, any){
			"POST /api/uploads/register": reply(upload),
			"POST /api/orders/7/uploads": reply(map[string]any{"uploads": []api.Upload{upload}}),
		}}
		objects := &fakeObjectStore{objects: map[string]string{}}
		h := newHooks(t, b, hooks.WithObjectStore(objects))
		c := h.Client()
		require.NoError(t, query.SetQueryData(c, hooks.Keys.OrderUploads(7), []api.Upload{}))
		require.NoError(t, query.SetQueryData(c, hooks.Keys.Uploads(), []api.Upload{}))

		// Act
		got, err := h.UseUploadDesign().MutateAsync(ctx, hooks.DesignUpload{
			FileName:    "logo.ai",
			ContentType: "application/postscript",
			Content:     strings.NewReader("vector"),
			OrderID:     7,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 31, got.ID)
		assert.Equal(t, "vector", objects.objects["designs/logo.ai"])
		assert.Equal(t, 1, b.count("POST /api/uploads/register"))
		assert.Equal(t, 1, b.count("POST /api/orders/7/uploads"))
		assert.Zero(t, b.count("POST /api/uploads"))
		assert.True(t, c.IsInvalidated(hooks.Keys.OrderUploads(7)))
		assert.True(t, c.IsInvalidated(hooks.Keys.Uploads()))
	})

	t.Run("Removes the stored object when registration fails", func(t *testing.T) {
		// Arrange
		b := &backend{routes: map[string]func(int) (int, any){
			"POST /api/uploads/register": func(int) (int, any) {
				return http.StatusBadRequest, map[string]string{"detail": "invalid file"}
			},
		}}
		objects := &fakeObjectStore{objects: map[string]string{}}
		h := newHooks(t, b, hooks.WithObjectStore(objects))

		// Act
		_, err := h.UseUploadDesign().MutateAsync(ctx, hooks.DesignUpload{FileName: "logo.ai", Content: strings.NewReader("x")})

		// Assert
		require.Error(t, err)
		assert.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
		assert.Empty(t, objects.objects)
	})

	t.Run("Removes the upload and refreshes the list when linking fails", func(t *testing.T) {
		// Arrange
		b := &backend{routes: map[string]func(int) (int, any){
			"GET /api/uploads":           reply(map[string]any{"uploads": []api.Upload{}}),
			"POST /api/uploads/register": reply(upload),
			"POST /api/orders/3/uploads": func(int) (int, any) {
				return http.StatusInternalServerError, map[string]string{"detail": "link failed"}
			},
			"DELETE /api/uploads/31": reply(api.Message{Message: "deleted"}),
		}}
		objects := &fakeObjectStore{objects: map[string]string{}}
		h := newHooks(t, b, hooks.WithObjectStore(objects))
		uploads := h.UseUploads()
		defer uploads.Close()
		await(t, uploads)

		// Act
		_, err := h.UseUploadDesign().MutateAsync(ctx, hooks.DesignUpload{
			FileName: "logo.ai",
			Content:  strings.NewReader("vector"),
			OrderID:  3,
		})

		// Assert
		require.Error(t, err)
		assert.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
		assert.Equal(t, 1, b.count("DELETE /api/uploads/31"))
		assert.Empty(t, objects.objects)
		assert.Eventually(t, func() bool { return b.count("GET /api/uploads") == 2 }, time.Second, 5*time.Millisecond,
			"the observed upload list must be refetched")
	})

	t.Run("Posts the file to the API without an object store", func(t *testing.T) {
		// Arrange
		b := &backend{routes: map[string]func(int) (int, any){
			"POST /api/uploads": reply(upload),
		}}
		h := newHooks(t, b)

		// Act
		got, err := h.UseUploadDesign().MutateAsync(ctx, hooks.DesignUpload{FileName: "logo.ai", Content: strings.NewReader("x")})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 31, got.ID)
		assert.Equal(t, 1, b.count("POST /api/uploads"))
		assert.Zero(t, b.count("POST /api/orders/0/uploads"))
	})
}
