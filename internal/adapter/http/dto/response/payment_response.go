package response

import (
	"time"

	"clearing_proposals/internal/domain/entities"
)

type PaymentResponse struct {
	PaymentID         string    `json:"payment_id"`
	ProposalID        string    `json:"proposal_id"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty"`
	Amount            float64   `json:"amount"`
	Date              time.Time `json:"date"`
	Status            string    `json:"status"`

	ProviderPayloadRaw string                 `json:"provider_payload_raw,omitempty"`
	ProviderPayload    map[string]interface{} `json:"provider_payload,omitempty"`
}

func FromPayment(p entities.ProposalPayment) PaymentResponse {
	return PaymentResponse{
		PaymentID:          p.ID,
		ProposalID:         p.ProposalID,
		ProviderPaymentID:  p.ProviderPaymentID,
		Amount:             p.Amount,
		Date:               p.Date,
		Status:             string(p.Status),
		ProviderPayloadRaw: string(p.ProviderPayloadRaw),
		ProviderPayload:    p.ProviderPayload,
	}
}

// WebhookResponse acknowledges a provider notification.
type WebhookResponse struct {
	Status     string `json:"status"`
	PaymentID  string `json:"payment_id,omitempty"`
	ProposalID string `json:"proposal_id,omitempty"`
}
