// Package content holds the static text of the storefront: navigation,
// order status labels and fallback copy.
package content

// NavItem is one navigation link.
type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// StoreNav is the storefront header navigation.
var StoreNav = []NavItem{
	{Label: "商品一覧", Href: "/products"},
	{Label: "カート", Href: "/cart"},
	{Label: "マイページ", Href: "/mypage"},
}

// MypageNav is the side navigation of the account pages.
var MypageNav = []NavItem{
	{Label: "注文履歴", Href: "/mypage/orders"},
	{Label: "配送先住所", Href: "/mypage/addresses"},
}

// AdminNav is the side navigation of the admin console.
var AdminNav = []NavItem{
	{Label: "ダッシュボード", Href: "/admin/dashboard"},
	{Label: "注文管理", Href: "/admin/orders"},
	{Label: "顧客管理", Href: "/admin/users"},
	{Label: "商品マスタ", Href: "/admin/product-masters"},
	{Label: "操作ログ", Href: "/admin/logs"},
}

// Order statuses as reported by the API.
const (
	OrderPending    = "pending"
	OrderAwaiting   = "awaiting_payment"
	OrderPaid       = "paid"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

var orderStatusLabels = map[string]string{
	OrderPending:    "注文受付",
	OrderAwaiting:   "入金待ち",
	OrderPaid:       "入金済み",
	OrderProcessing: "製作中",
	OrderShipped:    "発送済み",
	OrderDelivered:  "配達完了",
	OrderCancelled:  "キャンセル",
}

// OrderStatusLabel returns the display label of status, or status itself
// when it is unknown.
func OrderStatusLabel(status string) string {
	if label, ok := orderStatusLabels[status]; ok {
		return label
	}
	return status
}

// Cancellable reports whether an order in status may still be cancelled by
// the customer.
func Cancellable(status string) bool {
	switch status {
	case OrderPending, OrderAwaiting, OrderPaid:
		return true
	}
	return false
}

// Fallback copy shown instead of a page body.
const (
	InvalidOrderID   = "無効な注文IDです"
	InvalidProductID = "無効な商品IDです"
	InvalidMasterID  = "無効な商品マスタIDです"
	InvalidUserID    = "無効なユーザーIDです"
	InvalidRequest   = "入力内容に誤りがあります"
	LoadFailed       = "データの読み込みに失敗しました"
	NetworkFailed    = "通信エラーが発生しました。時間をおいて再度お試しください"
	NotFound         = "ページが見つかりません"
	LoginRequired    = "ログインが必要です"
	EmptyCart        = "カートに商品がありません"
	EmptyOrders      = "注文履歴はまだありません"
	UploadReceived   = "デザインファイルを受け付けました"
)
