// Package api maps each operation of the acrique REST API to a single HTTP call.
// Modules hold no state of their own and pass client errors through unchanged.
package api

import (
	"net/url"
	"strconv"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// API groups the per-entity modules.
type API struct {
	Addresses      *AddressAPI
	Cart           *CartAPI
	Orders         *OrderAPI
	Products       *ProductAPI
	Uploads        *UploadAPI
	Payments       *PaymentAPI
	AdminAuth      *AdminAuthAPI
	AdminDashboard *AdminDashboardAPI
	AdminLogs      *AdminLogAPI
	AdminUsers     *AdminUserAPI
	AdminOrders    *AdminOrderAPI
	AdminProducts  *AdminProductAPI
}

// New wires every module to the same client.
func New(c *apiclient.Client) *API {
	return &API{
		Addresses:      &AddressAPI{client: c},
		Cart:           &CartAPI{client: c},
		Orders:         &OrderAPI{client: c},
		Products:       &ProductAPI{client: c},
		Uploads:        &UploadAPI{client: c},
		Payments:       &PaymentAPI{client: c},
		AdminAuth:      &AdminAuthAPI{client: c},
		AdminDashboard: &AdminDashboardAPI{client: c},
		AdminLogs:      &AdminLogAPI{client: c},
		AdminUsers:     &AdminUserAPI{client: c},
		AdminOrders:    &AdminOrderAPI{client: c},
		AdminProducts:  &AdminProductAPI{client: c},
	}
}

// Page is the envelope of every paginated list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListParams are the paging and filter parameters shared by list endpoints.
// Zero values are omitted from the query string.
type ListParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

// Values encodes the params as a query string.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// Message is the body returned by endpoints that only acknowledge an action.
type Message struct {
	Message string `json:"message"`
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
