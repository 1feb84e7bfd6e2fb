package api

import (
	"context"
	"net/url"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// DashboardSummary is the headline block of the admin dashboard.
type DashboardSummary struct {
	TodayOrders     int     `json:"today_orders"`
	TodayRevenue    int     `json:"today_revenue"`
	PendingOrders   int     `json:"pending_orders"`
	AwaitingData    int     `json:"awaiting_data"`
	ProcessingCount int     `json:"processing_count"`
	RecentOrders    []Order `json:"recent_orders,omitempty"`
}

// StatPoint is one bucket of a dashboard chart.
type StatPoint struct {
	Date    string `json:"date"`
	Orders  int    `json:"orders"`
	Revenue int    `json:"revenue"`
}

// DashboardStats is the revenue/orders series for a period ("week", "month", "year").
type DashboardStats struct {
	Period string      `json:"period"`
	Series []StatPoint `json:"series"`
}

// AdminDashboardAPI is /api/admin/dashboard.
type AdminDashboardAPI struct {
	client *apiclient.Client
}

func (a *AdminDashboardAPI) Summary(ctx context.Context) (DashboardSummary, error) {
	return apiclient.Get[DashboardSummary](ctx, a.client, "/api/admin/dashboard", nil)
}

func (a *AdminDashboardAPI) Stats(ctx context.Context, period string) (DashboardStats, error) {
	var q url.Values
	if period != "" {
		q = url.Values{"period": {period}}
	}
	return apiclient.Get[DashboardStats](ctx, a.client, "/api/admin/dashboard/stats", q)
}
