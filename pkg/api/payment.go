package api

import (
	"context"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// CreatePaymentIntentInput requests a card payment for an order.
type CreatePaymentIntentInput struct {
	OrderID int `json:"order_id"`
}

// PaymentIntent is the payment provider handle returned to the browser.
type PaymentIntent struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int    `json:"amount"`
	Currency        string `json:"currency"`
}

// ConfirmPaymentInput reports a completed payment back to the API.
type ConfirmPaymentInput struct {
	OrderID         int    `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// PaymentResult is the outcome of a confirmation.
type PaymentResult struct {
	OrderID int    `json:"order_id"`
	Status  string `json:"status"`
}

// PaymentAPI is /api/payments.
type PaymentAPI struct {
	client *apiclient.Client
}

func (a *PaymentAPI) CreateIntent(ctx context.Context, in CreatePaymentIntentInput) (PaymentIntent, error) {
	return apiclient.Post[PaymentIntent](ctx, a.client, "/api/payments/intent", in)
}

func (a *PaymentAPI) Confirm(ctx context.Context, in ConfirmPaymentInput) (PaymentResult, error) {
	return apiclient.Post[PaymentResult](ctx, a.client, "/api/payments/confirm", in)
}
