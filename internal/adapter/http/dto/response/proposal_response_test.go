package response

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase"
)

func sampleProposal() entities.Proposal {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return entities.Proposal{
		ID:              "prop-1",
		Status:          entities.ProposalStatusSent,
		Customer:        entities.Customer{Name: "Ada", Email: "ada@example.com"},
		Inputs:          entities.ProposalInputs{Acreage: 2.5, Address: "12 Oak Rd"},
		Computed:        entities.ComputedTotals{Total: 6562.5, DepositAmount: 1312.5},
		DocumentVersion: 1,
		Tokens:          entities.ProposalTokens{ApproveTokenHash: "secret-hash", ExpiresAt: now.Add(24 * time.Hour)},
		Checkout:        entities.ProposalCheckout{CheckoutURL: "https://pay.example/1"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestFromProposal_HidesTokenHash(t *testing.T) {
	res := FromProposal(sampleProposal())
	if res.ID != "prop-1" || res.Status != "sent" || res.TokenExpiresAt == nil {
		t.Fatalf("unexpected mapped fields: %+v", res)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "secret-hash") {
		t.Fatalf("token hash leaked: %s", raw)
	}
}

func TestFromProposalPublic(t *testing.T) {
	p := sampleProposal()
	res := FromProposalPublic(p)
	if res.CustomerName != "Ada" || res.Address != "12 Oak Rd" || !res.DepositRequired {
		t.Fatalf("unexpected public fields: %+v", res)
	}
	if res.CheckoutURL != "" {
		t.Fatalf("checkout url must only show once accepted, got %q", res.CheckoutURL)
	}

	p.Status = entities.ProposalStatusAccepted
	if FromProposalPublic(p).CheckoutURL != "https://pay.example/1" {
		t.Fatalf("expected checkout url for accepted proposal")
	}
}

func TestFromAcceptResult(t *testing.T) {
	p := sampleProposal()
	p.Status = entities.ProposalStatusAccepted
	res := FromAcceptResult(usecase.AcceptResult{Proposal: p, DepositRequired: true, DepositAmount: 1312.5, PaymentURL: "https://pay"})
	if res.Status != "accepted" || !res.DepositRequired || res.DepositAmount != 1312.5 || res.PaymentURL != "https://pay" {
		t.Fatalf("unexpected accept response: %+v", res)
	}
}

func TestFromSendResult(t *testing.T) {
	res := FromSendResult(usecase.SendResult{Proposal: sampleProposal(), EmailID: "msg-1", ApproveURL: "https://x/approve"})
	if res.EmailID != "msg-1" || res.ApproveURL != "https://x/approve" || res.ExpiresAt == nil {
		t.Fatalf("unexpected send response: %+v", res)
	}
}

func TestFromEvents_EmptyIsNotNil(t *testing.T) {
	if out := FromEvents(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %#v", out)
	}
	out := FromEvents([]entities.ProposalEvent{{ID: "e1", Type: entities.EventProposalSent}})
	if len(out) != 1 || out[0].Type != "proposal.sent" {
		t.Fatalf("unexpected events: %+v", out)
	}
}

func TestFromPayment(t *testing.T) {
	now := time.Now().UTC()
	p := entities.ProposalPayment{
		ID:                 "pay-1",
		ProposalID:         "prop-1",
		ProviderPaymentID:  "123",
		Amount:             540,
		Date:               now,
		Status:             entities.PaymentStatusApproved,
		ProviderPayloadRaw: []byte(`{"id":123}`),
	}
	res := FromPayment(p)
	if res.PaymentID != "pay-1" || res.ProposalID != "prop-1" || res.Status != "approved" {
		t.Fatalf("unexpected mapped fields: %+v", res)
	}
	if res.ProviderPayloadRaw != `{"id":123}` {
		t.Fatalf("unexpected raw payload: %s", res.ProviderPayloadRaw)
	}
}

func TestFromTemplate_NilSlices(t *testing.T) {
	res := FromTemplate(entities.PricingTemplate{ID: "standard"})
	if res.Packages == nil || res.Services == nil || res.LegalTerms == nil {
		t.Fatalf("expected non-nil slices: %+v", res)
	}
}
