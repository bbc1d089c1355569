package response

import (
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase"
)

type GenerateProposalResponse struct {
	ProposalID   string `json:"proposal_id"`
	Version      int    `json:"version"`
	Status       string `json:"status"`
	PDFSignedURL string `json:"pdf_signed_url,omitempty"`
}

func FromGenerateResult(r usecase.GenerateResult) GenerateProposalResponse {
	return GenerateProposalResponse{
		ProposalID:   r.Proposal.ID,
		Version:      r.Proposal.DocumentVersion,
		Status:       string(r.Proposal.Status),
		PDFSignedURL: r.PDFSignedURL,
	}
}

type SendProposalResponse struct {
	ProposalID string     `json:"proposal_id"`
	Status     string     `json:"status"`
	EmailID    string     `json:"email_id"`
	ApproveURL string     `json:"approve_url"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func FromSendResult(r usecase.SendResult) SendProposalResponse {
	res := SendProposalResponse{
		ProposalID: r.Proposal.ID,
		Status:     string(r.Proposal.Status),
		EmailID:    r.EmailID,
		ApproveURL: r.ApproveURL,
	}
	if !r.Proposal.Tokens.ExpiresAt.IsZero() {
		exp := r.Proposal.Tokens.ExpiresAt
		res.ExpiresAt = &exp
	}
	return res
}

// ProposalResponse is the admin view of a proposal. Token material is never
// exposed, only whether it was used and when it expires.
type ProposalResponse struct {
	ID              string                    `json:"id"`
	LeadID          string                    `json:"lead_id,omitempty"`
	Status          string                    `json:"status"`
	Customer        entities.Customer         `json:"customer"`
	Inputs          entities.ProposalInputs   `json:"inputs"`
	Computed        entities.ComputedTotals   `json:"computed"`
	SnapshotRef     entities.SnapshotRef      `json:"snapshot_ref"`
	DocumentVersion int                       `json:"document_version"`
	TokenExpiresAt  *time.Time                `json:"token_expires_at,omitempty"`
	TokenUsed       bool                      `json:"token_used"`
	Assets          entities.ProposalAssets   `json:"assets"`
	Audit           entities.ProposalAudit    `json:"audit"`
	Checkout        entities.ProposalCheckout `json:"checkout"`
	CreatedBy       string                    `json:"created_by"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

func FromProposal(p entities.Proposal) ProposalResponse {
	res := ProposalResponse{
		ID:              p.ID,
		LeadID:          p.LeadID,
		Status:          string(p.Status),
		Customer:        p.Customer,
		Inputs:          p.Inputs,
		Computed:        p.Computed,
		SnapshotRef:     p.SnapshotRef,
		DocumentVersion: p.DocumentVersion,
		TokenUsed:       p.Tokens.IsUsed,
		Assets:          p.Assets,
		Audit:           p.Audit,
		Checkout:        p.Checkout,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if !p.Tokens.ExpiresAt.IsZero() {
		exp := p.Tokens.ExpiresAt
		res.TokenExpiresAt = &exp
	}
	return res
}

// PublicProposalResponse is what the customer sees through the approval link.
type PublicProposalResponse struct {
	ID              string                  `json:"id"`
	Status          string                  `json:"status"`
	CustomerName    string                  `json:"customer_name"`
	Address         string                  `json:"address"`
	Acreage         float64                 `json:"acreage"`
	Computed        entities.ComputedTotals `json:"computed"`
	DepositRequired bool                    `json:"deposit_required"`
	DocumentVersion int                     `json:"document_version"`
	PDFURL          string                  `json:"pdf_url,omitempty"`
	ExpiresAt       *time.Time              `json:"expires_at,omitempty"`
	AcceptedAt      *time.Time              `json:"accepted_at,omitempty"`
	CheckoutURL     string                  `json:"checkout_url,omitempty"`
}

func FromProposalPublic(p entities.Proposal) PublicProposalResponse {
	res := PublicProposalResponse{
		ID:              p.ID,
		Status:          string(p.Status),
		CustomerName:    p.Customer.Name,
		Address:         p.Inputs.Address,
		Acreage:         p.Inputs.Acreage,
		Computed:        p.Computed,
		DepositRequired: p.DepositRequired(),
		DocumentVersion: p.DocumentVersion,
		PDFURL:          p.Assets.SignedPDFURL,
		AcceptedAt:      p.Audit.AcceptedAt,
	}
	if !p.Tokens.ExpiresAt.IsZero() {
		exp := p.Tokens.ExpiresAt
		res.ExpiresAt = &exp
	}
	if p.Status == entities.ProposalStatusAccepted {
		res.CheckoutURL = p.Checkout.CheckoutURL
	}
	return res
}

type AcceptProposalResponse struct {
	ProposalID      string  `json:"proposal_id"`
	Status          string  `json:"status"`
	DepositRequired bool    `json:"deposit_required"`
	DepositAmount   float64 `json:"deposit_amount,omitempty"`
	PaymentURL      string  `json:"payment_url,omitempty"`
}

func FromAcceptResult(r usecase.AcceptResult) AcceptProposalResponse {
	return AcceptProposalResponse{
		ProposalID:      r.Proposal.ID,
		Status:          string(r.Proposal.Status),
		DepositRequired: r.DepositRequired,
		DepositAmount:   r.DepositAmount,
		PaymentURL:      r.PaymentURL,
	}
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type EventResponse struct {
	ID         string            `json:"id"`
	ProposalID string            `json:"proposal_id"`
	Type       string            `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func FromEvents(events []entities.ProposalEvent) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:         e.ID,
			ProposalID: e.ProposalID,
			Type:       string(e.Type),
			Timestamp:  e.Timestamp,
			Metadata:   e.Metadata,
		})
	}
	return out
}
