package entities

import (
	"encoding/json"
	"time"
)

// PaymentStatus represents the deposit payment outcome.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDenied   PaymentStatus = "denied"
)

// PaymentStatusFromProvider maps a Mercado Pago status string.
func PaymentStatusFromProvider(status string) PaymentStatus {
	switch status {
	case "approved", "authorized":
		return PaymentStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return PaymentStatusDenied
	default:
		return PaymentStatusPending
	}
}

// ProposalPayment is a deposit payment attempt for an accepted proposal.
//
// Storage model (DynamoDB):
//   - PK: id (checkout session id)
//   - GSI1 (proposal_id-index): proposal_id
//
// ProviderPayloadRaw keeps the original provider body for traceability.
type ProposalPayment struct {
	ID                string        `json:"id"`
	ProposalID        string        `json:"proposal_id"`
	ProviderPaymentID string        `json:"provider_payment_id,omitempty"`
	Amount            float64       `json:"amount"`
	Date              time.Time     `json:"date"`
	Status            PaymentStatus `json:"status"`

	ProviderPayloadRaw json.RawMessage        `json:"provider_payload_raw,omitempty"`
	ProviderPayload    map[string]interface{} `json:"provider_payload,omitempty"`
}
