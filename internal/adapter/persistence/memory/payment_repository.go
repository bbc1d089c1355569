package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]entities.ProposalPayment
}

var _ interfaces.IPaymentRepository = (*PaymentRepository)(nil)

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: map[string]entities.ProposalPayment{}}
}

func (r *PaymentRepository) Create(_ context.Context, p entities.ProposalPayment) (entities.ProposalPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; ok {
		return entities.ProposalPayment{}, interfaces.ErrConditionFailed
	}
	r.payments[p.ID] = p
	return p, nil
}

func (r *PaymentRepository) GetByID(_ context.Context, id string) (entities.ProposalPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.payments[id], nil
}

func (r *PaymentRepository) ListByProposalID(_ context.Context, proposalID string) ([]entities.ProposalPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.ProposalPayment
	for _, p := range r.payments {
		if p.ProposalID == proposalID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *PaymentRepository) UpdateStatus(_ context.Context, id string, status entities.PaymentStatus, providerPaymentID string, raw json.RawMessage) (entities.ProposalPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return entities.ProposalPayment{}, interfaces.ErrConditionFailed
	}
	p.Status = status
	if providerPaymentID != "" {
		p.ProviderPaymentID = providerPaymentID
	}
	if len(raw) > 0 {
		p.ProviderPayloadRaw = raw
		var parsed map[string]interface{}
		if err := json.Unmarshal(raw, &parsed); err == nil {
			p.ProviderPayload = parsed
		}
	}
	r.payments[id] = p
	return p, nil
}
