package api

import (
	"context"
	"net/url"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// ProductMasterInput is the body of admin master create and update calls.
type ProductMasterInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// UpdateProductMasterInput identifies the master being updated. MasterID is
// kept as the route string the console passes around.
type UpdateProductMasterInput struct {
	MasterID string
	Data     ProductMasterInput
}

// AdminProductAPI is /api/admin/masters.
type AdminProductAPI struct {
	client *apiclient.Client
}

func (a *AdminProductAPI) ListMasters(ctx context.Context) ([]ProductMaster, error) {
	out, err := apiclient.Get[masterList](ctx, a.client, "/api/admin/masters", nil)
	return out.Masters, err
}

func (a *AdminProductAPI) CreateMaster(ctx context.Context, in ProductMasterInput) (ProductMaster, error) {
	return apiclient.Post[ProductMaster](ctx, a.client, "/api/admin/masters", in)
}

func (a *AdminProductAPI) UpdateMaster(ctx context.Context, in UpdateProductMasterInput) (ProductMaster, error) {
	if in.MasterID == "" {
		return ProductMaster{}, apiclient.ValidationError("master id is required")
	}
	return apiclient.Put[ProductMaster](ctx, a.client, "/api/admin/masters/"+url.PathEscape(in.MasterID), in.Data)
}

func (a *AdminProductAPI) DeleteMaster(ctx context.Context, id int) (Message, error) {
	return apiclient.Delete[Message](ctx, a.client, "/api/admin/masters/"+itoa(id))
}
