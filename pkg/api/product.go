package api

import (
	"context"
	"net/url"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// ProductImage is one catalogue image.
type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsMain    bool   `json:"is_main"`
	SortOrder int    `json:"sort_order"`
}

// ProductOption is a configurable fabrication option such as size or thickness.
type ProductOption struct {
	Name    string   `json:"name"`
	Values  []string `json:"values"`
	Default string   `json:"default,omitempty"`
}

// Product is a catalogue entry.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	NameJa      string          `json:"name_ja,omitempty"`
	Category    string          `json:"category_id"`
	Tagline     string          `json:"tagline,omitempty"`
	Description string          `json:"description,omitempty"`
	BasePrice   int             `json:"base_price"`
	LeadTime    string          `json:"lead_time_note,omitempty"`
	Images      []ProductImage  `json:"images,omitempty"`
	Options     []ProductOption `json:"options,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// ProductListParams filters the catalogue.
type ProductListParams struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

func (p ProductListParams) values() url.Values {
	v := url.Values{}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Limit > 0 {
		v.Set("limit", itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", itoa(p.Offset))
	}
	return v
}

// ProductMaster is a template product type (e.g. "QR code stand") that
// catalogue products are derived from.
type ProductMaster struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

type productList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type masterList struct {
	Masters []ProductMaster `json:"masters"`
}

// ProductAPI is the public catalogue: /api/products and /api/masters.
type ProductAPI struct {
	client *apiclient.Client
}

func (a *ProductAPI) List(ctx context.Context, params ProductListParams) ([]Product, error) {
	out, err := apiclient.Get[productList](ctx, a.client, "/api/products", params.values())
	return out.Products, err
}

func (a *ProductAPI) Get(ctx context.Context, id string) (Product, error) {
	return apiclient.Get[Product](ctx, a.client, "/api/products/"+url.PathEscape(id), nil)
}

func (a *ProductAPI) ListMasters(ctx context.Context) ([]ProductMaster, error) {
	out, err := apiclient.Get[masterList](ctx, a.client, "/api/masters", nil)
	return out.Masters, err
}

func (a *ProductAPI) GetMaster(ctx context.Context, id int) (ProductMaster, error) {
	return apiclient.Get[ProductMaster](ctx, a.client, "/api/masters/"+itoa(id), nil)
}
