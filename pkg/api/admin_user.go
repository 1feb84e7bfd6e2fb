package api

import (
	"context"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// User is a customer as seen from the admin console.
type User struct {
	ID         int       `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Company    string    `json:"company,omitempty"`
	OrderCount int       `json:"order_count"`
	TotalSpent int       `json:"total_spent"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdminUserAPI is /api/admin/users.
type AdminUserAPI struct {
	client *apiclient.Client
}

func (a *AdminUserAPI) List(ctx context.Context, params ListParams) (Page[User], error) {
	return apiclient.Get[Page[User]](ctx, a.client, "/api/admin/users", params.Values())
}

func (a *AdminUserAPI) Get(ctx context.Context, id int) (User, error) {
	return apiclient.Get[User](ctx, a.client, "/api/admin/users/"+itoa(id), nil)
}

// ListOrders returns the orders placed by one customer.
func (a *AdminUserAPI) ListOrders(ctx context.Context, userID int, params ListParams) (Page[Order], error) {
	return apiclient.Get[Page[Order]](ctx, a.client, "/api/admin/users/"+itoa(userID)+"/orders", params.Values())
}
