package interfaces

import (
	"context"
	"encoding/json"
)

type CheckoutRequest struct {
	ProposalID    string
	AmountCents   int64
	Currency      string
	Title         string
	CustomerName  string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

type ProviderPayment struct {
	ID                string
	Status            string
	ExternalReference string
	Amount            float64
	Raw               json.RawMessage
}

// IPaymentGateway abstracts the hosted payment provider (Mercado Pago).
//
//go:generate mockgen -source=payment_gateway_interface.go -destination=mocks/mock_payment_gateway.go -package=mock_interfaces
type IPaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetPayment(ctx context.Context, providerPaymentID string) (ProviderPayment, error)
}
