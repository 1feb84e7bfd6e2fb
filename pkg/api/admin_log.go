package api

import (
	"context"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// AdminLog is an audit record of an operator action.
type AdminLog struct {
	ID         int            `json:"id"`
	AdminID    int            `json:"admin_id"`
	AdminName  string         `json:"admin_name,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AdminLogAPI is /api/admin/logs.
type AdminLogAPI struct {
	client *apiclient.Client
}

func (a *AdminLogAPI) List(ctx context.Context, params ListParams) (Page[AdminLog], error) {
	return apiclient.Get[Page[AdminLog]](ctx, a.client, "/api/admin/logs", params.Values())
}
