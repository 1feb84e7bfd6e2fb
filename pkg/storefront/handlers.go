package storefront

import (
	"net/http"
	"strconv"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/content"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
)

// maxUploadMemory bounds the multipart form held in memory; larger files spill to disk.
const maxUploadMemory = 32 << 20

func (s *Server) routes() {
	mux := s.Mux()

	mux.HandleFunc("GET /products", s.withSession(s.productsPage))
	mux.HandleFunc("GET /products/{id}", s.withSession(s.productPage))
	mux.HandleFunc("GET /product-masters", s.withSession(s.productMastersPage))
	mux.HandleFunc("GET /cart", s.withSession(s.cartPage))
	mux.HandleFunc("POST /cart/items", s.withSession(s.addCartItem))

	mux.HandleFunc("GET /mypage/addresses", s.withSession(s.addressesPage))
	mux.HandleFunc("POST /mypage/addresses", s.withSession(s.createAddress))
	mux.HandleFunc("GET /mypage/orders", s.withSession(s.ordersPage))
	mux.HandleFunc("GET /mypage/orders/{id}", s.withSession(s.orderPage))
	mux.HandleFunc("GET /mypage/orders/{id}/upload", s.withSession(s.orderUploadPage))
	mux.HandleFunc("POST /mypage/orders/{id}/upload", s.withSession(s.uploadDesign))
	mux.HandleFunc("POST /orders", s.withSession(s.createOrder))
	mux.HandleFunc("POST /orders/{id}/cancel", s.withSession(s.cancelOrder))

	mux.HandleFunc("POST /admin/login", s.withSession(s.adminLogin))
	mux.HandleFunc("POST /admin/logout", s.withSession(s.adminLogout))
	mux.HandleFunc("GET /admin/dashboard", s.admin(s.dashboardPage))
	mux.HandleFunc("GET /admin/orders", s.admin(s.adminOrdersPage))
	mux.HandleFunc("PATCH /admin/orders/{id}/status", s.admin(s.updateOrderStatus))
	mux.HandleFunc("GET /admin/product-masters", s.admin(s.adminMastersPage))
	mux.HandleFunc("POST /admin/product-masters", s.admin(s.createMaster))
	mux.HandleFunc("PUT /admin/product-masters/{id}", s.admin(s.updateMaster))
	mux.HandleFunc("GET /admin/users/{id}/orders", s.admin(s.adminUserOrdersPage))
	mux.HandleFunc("GET /admin/logs", s.admin(s.adminLogsPage))
}

// admin wraps a console page: the session must belong to a signed-in admin.
func (s *Server) admin(h sessionHandler) http.HandlerFunc {
	return s.withSession(func(w http.ResponseWriter, r *http.Request, sess *Session) {
		status, err := load(r.Context(), sess.Hooks.UseAdminAuthStatus())
		if err == nil && !status.IsAuthenticated {
			err = errUnauthenticated
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, sess)
	})
}

// OrderView is an order with its display status.
type OrderView struct {
	api.Order
	StatusLabel string `json:"status_label"`
	Cancellable bool   `json:"cancellable"`
}

func orderView(o api.Order) OrderView {
	return OrderView{Order: o, StatusLabel: content.OrderStatusLabel(o.Status), Cancellable: content.Cancellable(o.Status)}
}

func orderViews(orders []api.Order) []OrderView {
	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = orderView(o)
	}
	return views
}

// OrdersView is one page of orders.
type OrdersView struct {
	Items []OrderView `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Empty string      `json:"empty,omitempty"`
}

func ordersView(p api.Page[api.Order]) OrdersView {
	v := OrdersView{Items: orderViews(p.Items), Total: p.Total, Page: p.Page, Limit: p.Limit}
	if len(p.Items) == 0 {
		v.Empty = content.EmptyOrders
	}
	return v
}

// OrderUploadView backs the design upload page of an order.
type OrderUploadView struct {
	Order   OrderView    `json:"order"`
	Uploads []api.Upload `json:"uploads"`
}

// --- catalogue ---

func (s *Server) productsPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	params := api.ProductListParams{Category: q.Get("category"), Limit: limit, Offset: offset}
	renderPage(s, w, r, content.StoreNav, sess.Hooks.UseProducts(params))
}

func (s *Server) productPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	id := r.PathValue("id")
	if id == "" {
		writeFallback(w, http.StatusBadRequest, content.InvalidProductID)
		return
	}
	renderPage(s, w, r, content.StoreNav, sess.Hooks.UseProduct(id))
}

func (s *Server) productMastersPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	renderPage(s, w, r, content.StoreNav, sess.Hooks.UseProductMasters())
}

// --- cart ---

func (s *Server) cartPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	cart, err := load(r.Context(), sess.Hooks.UseCart())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view := struct {
		api.Cart
		Empty string `json:"empty,omitempty"`
	}{Cart: cart}
	if len(cart.Items) == 0 {
		view.Empty = content.EmptyCart
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.StoreNav, Data: view})
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request, sess *Session) {
	var in api.AddCartItemInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	cart, err := sess.Hooks.UseAddCartItem().MutateAsync(r.Context(), in)
	s.respond(w, r, http.StatusCreated, cart, err)
}

// --- mypage ---

func (s *Server) addressesPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	renderPage(s, w, r, content.MypageNav, sess.Hooks.UseAddresses())
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request, sess *Session) {
	var in api.AddressInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	addr, err := sess.Hooks.UseCreateAddress().MutateAsync(r.Context(), in)
	s.respond(w, r, http.StatusCreated, addr, err)
}

func (s *Server) ordersPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	page, err := load(r.Context(), sess.Hooks.UseOrders(listParams(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.MypageNav, Data: ordersView(page)})
}

func (s *Server) orderPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidOrderID)
		return
	}
	order, err := load(r.Context(), sess.Hooks.UseOrder(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.MypageNav, Data: orderView(order)})
}

func (s *Server) orderUploadPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidOrderID)
		return
	}
	orderObs := sess.Hooks.UseOrder(id)
	uploadsObs := sess.Hooks.UseOrderUploads(id)
	order, err := load(r.Context(), orderObs)
	if err != nil {
		uploadsObs.Close()
		s.writeError(w, r, err)
		return
	}
	uploads, err := load(r.Context(), uploadsObs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.MypageNav, Data: OrderUploadView{Order: orderView(order), Uploads: uploads}})
}

func (s *Server) uploadDesign(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidOrderID)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeFallback(w, http.StatusBadRequest, content.InvalidRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeFallback(w, http.StatusBadRequest, content.InvalidRequest)
		return
	}
	defer file.Close()

	upload, err := sess.Hooks.UseUploadDesign().MutateAsync(r.Context(), hooks.DesignUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
		OrderID:     id,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": content.UploadReceived, "upload": upload})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request, sess *Session) {
	var in api.CreateOrderInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := sess.Hooks.UseCreateOrder().MutateAsync(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderView(order))
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidOrderID)
		return
	}
	in := api.CancelOrderInput{OrderID: id}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}
		in.OrderID = id
	}
	order, err := sess.Hooks.UseCancelOrder().MutateAsync(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView(order))
}

// --- admin ---

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request, sess *Session) {
	var in api.AdminLoginInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := sess.Hooks.UseAdminLogin().MutateAsync(r.Context(), in)
	s.respond(w, r, http.StatusOK, status, err)
}

func (s *Server) adminLogout(w http.ResponseWriter, r *http.Request, sess *Session) {
	msg, err := sess.Hooks.UseAdminLogout().MutateAsync(r.Context(), struct{}{})
	s.respond(w, r, http.StatusOK, msg, err)
}

func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	summary, err := load(r.Context(), sess.Hooks.UseAdminDashboard())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view := struct {
		Summary api.DashboardSummary `json:"summary"`
		Stats   *api.DashboardStats  `json:"stats,omitempty"`
	}{Summary: summary}
	if period := r.URL.Query().Get("period"); period != "" {
		stats, err := load(r.Context(), sess.Hooks.UseAdminDashboardStats(period))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		view.Stats = &stats
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.AdminNav, Data: view})
}

func (s *Server) adminOrdersPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	page, err := load(r.Context(), sess.Hooks.UseAdminOrders(listParams(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.AdminNav, Data: ordersView(page)})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidOrderID)
		return
	}
	var in api.UpdateOrderStatusInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.OrderID = id
	order, err := sess.Hooks.UseAdminUpdateOrderStatus().MutateAsync(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView(order))
}

func (s *Server) adminMastersPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	renderPage(s, w, r, content.AdminNav, sess.Hooks.UseAdminProductMasters())
}

func (s *Server) createMaster(w http.ResponseWriter, r *http.Request, sess *Session) {
	var in api.ProductMasterInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	master, err := sess.Hooks.UseAdminCreateProductMaster().MutateAsync(r.Context(), in)
	s.respond(w, r, http.StatusCreated, master, err)
}

func (s *Server) updateMaster(w http.ResponseWriter, r *http.Request, sess *Session) {
	if _, ok := pathID(r, "id"); !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidMasterID)
		return
	}
	var data api.ProductMasterInput
	if err := decodeBody(r, &data); err != nil {
		s.writeError(w, r, err)
		return
	}
	in := api.UpdateProductMasterInput{MasterID: r.PathValue("id"), Data: data}
	master, err := sess.Hooks.UseAdminUpdateProductMaster().MutateAsync(r.Context(), in)
	s.respond(w, r, http.StatusOK, master, err)
}

func (s *Server) adminUserOrdersPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFallback(w, http.StatusBadRequest, content.InvalidUserID)
		return
	}
	page, err := load(r.Context(), sess.Hooks.UseAdminUserOrders(id, listParams(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.AdminNav, Data: ordersView(page)})
}

func (s *Server) adminLogsPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	page, err := load(r.Context(), sess.Hooks.UseAdminLogs(listParams(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: content.AdminNav, Data: page})
}

// --- helpers ---

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}
