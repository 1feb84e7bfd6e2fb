package api

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// Admin is an operator account of the admin console.
type Admin struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AdminLoginInput holds console credentials.
type AdminLoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminAuthStatus reports whether the session belongs to a signed-in admin.
type AdminAuthStatus struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Admin           *Admin `json:"admin,omitempty"`
}

// AdminAuthAPI is /api/admin/auth.
type AdminAuthAPI struct {
	client *apiclient.Client
}

func (a *AdminAuthAPI) Login(ctx context.Context, in AdminLoginInput) (AdminAuthStatus, error) {
	if in.Email == "" || in.Password == "" {
		return AdminAuthStatus{}, apiclient.ValidationError("email and password are required")
	}
	return apiclient.Post[AdminAuthStatus](ctx, a.client, "/api/admin/auth/login", in)
}

func (a *AdminAuthAPI) Logout(ctx context.Context) (Message, error) {
	return apiclient.Post[Message](ctx, a.client, "/api/admin/auth/logout", nil)
}

func (a *AdminAuthAPI) Status(ctx context.Context) (AdminAuthStatus, error) {
	return apiclient.Get[AdminAuthStatus](ctx, a.client, "/api/admin/auth/status", nil)
}
