package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() interfaces.ProposalDocument {
	return interfaces.ProposalDocument{
		Proposal: entities.Proposal{
			ID:              "3f1c2a9e-0000-4000-8000-000000000001",
			DocumentVersion: 1,
			Customer:        entities.Customer{Name: "José Núñez", Email: "jose@example.com"},
			Inputs: entities.ProposalInputs{
				Acreage:            4.5,
				PackageID:          "medium",
				SelectedServiceIDs: []string{"stump"},
				Obstacles:          []string{"slope"},
				Address:            "12 Pine Rd",
				DistanceMiles:      40,
			},
			Computed: entities.ComputedTotals{
				PackageID:     "medium",
				Subtotal:      4500,
				Total:         5200,
				DepositAmount: 1040,
			},
			SnapshotRef: entities.SnapshotRef{TemplateID: "standard", Version: 3},
			CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Snapshot: entities.ProposalSnapshot{
			TemplateID: "standard",
			Version:    3,
			Packages:   []entities.Package{{ID: "medium", Name: "Medium", MaxDBHInches: 6, PricePerAcre: 1000}},
			Services:   []entities.Service{{ID: "stump", Name: "Stump grinding", Price: 300}},
			LegalTerms: []string{"Deposit is non-refundable.", "Work scheduled within 30 days."},
		},
	}
}

func TestRenderer_RendersPDF(t *testing.T) {
	r := NewRenderer("Acme Clearing", "USD")

	out, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderer_SameInputSameBytes(t *testing.T) {
	r := NewRenderer("Acme Clearing", "USD")

	a, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	b, err := r.Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer("Acme", "USD").Render(ctx, sampleDocument())
	assert.ErrorIs(t, err, context.Canceled)
}
