package api

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// Address is a saved shipping address.
type Address struct {
	ID           int    `json:"id"`
	Label        string `json:"label,omitempty"`
	Name         string `json:"name"`
	PostalCode   string `json:"postal_code"`
	Prefecture   string `json:"prefecture"`
	City         string `json:"city"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"is_default"`
}

// AddressInput is the body of create and update calls.
type AddressInput struct {
	Label        string `json:"label,omitempty"`
	Name         string `json:"name"`
	PostalCode   string `json:"postal_code"`
	Prefecture   string `json:"prefecture"`
	City         string `json:"city"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"is_default"`
}

// UpdateAddressInput identifies the address being updated.
type UpdateAddressInput struct {
	AddressID int
	Data      AddressInput
}

type addressList struct {
	Addresses []Address `json:"addresses"`
}

// AddressAPI is /api/addresses.
type AddressAPI struct {
	client *apiclient.Client
}

func (a *AddressAPI) List(ctx context.Context) ([]Address, error) {
	out, err := apiclient.Get[addressList](ctx, a.client, "/api/addresses", nil)
	return out.Addresses, err
}

func (a *AddressAPI) Get(ctx context.Context, id int) (Address, error) {
	return apiclient.Get[Address](ctx, a.client, "/api/addresses/"+itoa(id), nil)
}

func (a *AddressAPI) Create(ctx context.Context, in AddressInput) (Address, error) {
	return apiclient.Post[Address](ctx, a.client, "/api/addresses", in)
}

func (a *AddressAPI) Update(ctx context.Context, in UpdateAddressInput) (Address, error) {
	return apiclient.Put[Address](ctx, a.client, "/api/addresses/"+itoa(in.AddressID), in.Data)
}

func (a *AddressAPI) Delete(ctx context.Context, id int) (Message, error) {
	return apiclient.Delete[Message](ctx, a.client, "/api/addresses/"+itoa(id))
}

// SetDefault makes the address the default shipping destination.
func (a *AddressAPI) SetDefault(ctx context.Context, id int) (Address, error) {
	return apiclient.Put[Address](ctx, a.client, "/api/addresses/"+itoa(id)+"/default", nil)
}
