package entities

import "time"

type ProposalEventType string

const (
	EventProposalGenerated      ProposalEventType = "proposal.generated"
	EventProposalSent           ProposalEventType = "proposal.sent"
	EventProposalViewed         ProposalEventType = "proposal.viewed"
	EventProposalAccepted       ProposalEventType = "proposal.accepted"
	EventProposalCheckoutStart  ProposalEventType = "proposal.checkout_started"
	EventProposalPaid           ProposalEventType = "proposal.paid"
	EventProposalExpired        ProposalEventType = "proposal.expired"
	EventProposalPDFRendered    ProposalEventType = "proposal.pdf_rendered"
	EventProposalPDFFailed      ProposalEventType = "proposal.pdf_failed"
	EventProposalEmailFailed    ProposalEventType = "proposal.email_failed"
	EventProposalCheckoutFailed ProposalEventType = "proposal.checkout_failed"
)

// ProposalEvent is an append-only audit record.
//
// Storage model (DynamoDB):
//   - PK: proposal_id
//   - SK: id (time-ordered: RFC3339Nano timestamp + random suffix)
type ProposalEvent struct {
	ID         string            `json:"id"`
	ProposalID string            `json:"proposal_id"`
	Type       ProposalEventType `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
