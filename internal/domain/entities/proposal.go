package entities

import "time"

// ProposalStatus represents the lifecycle of a proposal.
//
// Allowed forward moves:
//
//	draft -> sent -> viewed -> accepted -> paid
//	sent  -> accepted (viewed is optional)
//	sent|viewed -> expired
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusViewed   ProposalStatus = "viewed"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusPaid     ProposalStatus = "paid"
	ProposalStatusExpired  ProposalStatus = "expired"
)

var proposalStatusRank = map[ProposalStatus]int{
	ProposalStatusDraft:    0,
	ProposalStatusSent:     1,
	ProposalStatusViewed:   2,
	ProposalStatusAccepted: 3,
	ProposalStatusPaid:     4,
}

// CanTransition reports whether moving from s to next is a legal forward move.
func (s ProposalStatus) CanTransition(next ProposalStatus) bool {
	switch next {
	case ProposalStatusExpired:
		return s == ProposalStatusSent || s == ProposalStatusViewed
	case ProposalStatusSent:
		return s == ProposalStatusDraft
	case ProposalStatusViewed:
		return s == ProposalStatusSent
	case ProposalStatusAccepted:
		return s == ProposalStatusSent || s == ProposalStatusViewed
	case ProposalStatusPaid:
		return s == ProposalStatusAccepted
	}
	return false
}

// AtLeast reports whether s is at or beyond other on the main path.
// Expired is off the main path and never compares as at-least anything.
func (s ProposalStatus) AtLeast(other ProposalStatus) bool {
	a, okA := proposalStatusRank[s]
	b, okB := proposalStatusRank[other]
	return okA && okB && a >= b
}

func (s ProposalStatus) Valid() bool {
	_, ok := proposalStatusRank[s]
	return ok || s == ProposalStatusExpired
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ProposalInputs are supplied by the admin at generation time and never change.
type ProposalInputs struct {
	Acreage            float64  `json:"acreage"`
	PackageID          string   `json:"package_id"`
	SelectedServiceIDs []string `json:"selected_service_ids,omitempty"`
	Obstacles          []string `json:"obstacles,omitempty"`
	Address            string   `json:"address"`
	DistanceMiles      float64  `json:"distance_miles,omitempty"`
}

// ComputedTotals are stored at generation time and never recomputed.
type ComputedTotals struct {
	PackageID          string  `json:"package_id"`
	PackageFallback    bool    `json:"package_fallback,omitempty"`
	Subtotal           float64 `json:"subtotal"`
	ObstacleAdjustment float64 `json:"obstacle_adjustment"`
	DistanceSurcharge  float64 `json:"distance_surcharge"`
	Surcharges         float64 `json:"surcharges"`
	ServicesTotal      float64 `json:"services_total"`
	Total              float64 `json:"total"`
	DepositAmount      float64 `json:"deposit_amount"`
}

type SnapshotRef struct {
	TemplateID string `json:"template_id"`
	Version    int    `json:"version"`
}

// ProposalTokens holds only a hash of the approval token's unique id.
type ProposalTokens struct {
	ApproveTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at,omitempty"`
	IsUsed           bool      `json:"is_used"`
}

type ProposalAssets struct {
	PDFPath      string `json:"pdf_path,omitempty"`
	PDFVersion   int    `json:"pdf_version,omitempty"`
	WebURL       string `json:"web_url,omitempty"`
	SignedPDFURL string `json:"signed_pdf_url,omitempty"`
}

type ProposalAudit struct {
	SentAt         *time.Time `json:"sent_at,omitempty"`
	SentBy         string     `json:"sent_by,omitempty"`
	ViewedAt       *time.Time `json:"viewed_at,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	AcceptedByName string     `json:"accepted_by_name,omitempty"`
	IP             string     `json:"ip,omitempty"`
	UserAgent      string     `json:"user_agent,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// ProposalCheckout tracks the hosted payment session opened for the deposit.
type ProposalCheckout struct {
	SessionID         string `json:"session_id,omitempty"`
	CheckoutURL       string `json:"checkout_url,omitempty"`
	ProviderPaymentID string `json:"provider_payment_id,omitempty"`
}

// Proposal is the aggregate root of the proposal lifecycle.
//
// Storage model (DynamoDB):
//   - PK: id
//
// Mutation happens only through ProposalUseCase transitions, each of which is a
// conditional write paired with exactly one ProposalEvent. Revision counts
// stored writes; a transition only applies to the revision it was built from.
type Proposal struct {
	ID              string           `json:"id"`
	LeadID          string           `json:"lead_id,omitempty"`
	Customer        Customer         `json:"customer"`
	Inputs          ProposalInputs   `json:"inputs"`
	Computed        ComputedTotals   `json:"computed"`
	SnapshotRef     SnapshotRef      `json:"snapshot_ref"`
	Status          ProposalStatus   `json:"status"`
	DocumentVersion int              `json:"document_version"`
	Tokens          ProposalTokens   `json:"tokens"`
	Assets          ProposalAssets   `json:"assets"`
	Audit           ProposalAudit    `json:"audit"`
	Checkout        ProposalCheckout `json:"checkout"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Revision        int              `json:"revision"`
}

// DepositRequired reports whether accepting this proposal opens a payment.
func (p Proposal) DepositRequired() bool {
	return p.Computed.DepositAmount > 0
}

// Clone returns a copy that shares no slices or time pointers with p.
func (p Proposal) Clone() Proposal {
	out := p
	out.Inputs.SelectedServiceIDs = append([]string(nil), p.Inputs.SelectedServiceIDs...)
	out.Inputs.Obstacles = append([]string(nil), p.Inputs.Obstacles...)
	out.Audit.SentAt = cloneTime(p.Audit.SentAt)
	out.Audit.ViewedAt = cloneTime(p.Audit.ViewedAt)
	out.Audit.AcceptedAt = cloneTime(p.Audit.AcceptedAt)
	out.Audit.PaidAt = cloneTime(p.Audit.PaidAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
