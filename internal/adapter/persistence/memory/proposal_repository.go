// Package memory holds mutex-guarded repositories used for local runs and
// tests. They honour the same conditional-write contract as the DynamoDB
// repositories.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"
)

type ProposalRepository struct {
	mu         sync.Mutex
	proposals  map[string]entities.Proposal
	events     map[string][]entities.ProposalEvent
	failEvents bool
}

var _ interfaces.IProposalRepository = (*ProposalRepository)(nil)

var errEventWrite = errors.New("event write failed")

func NewProposalRepository() *ProposalRepository {
	return &ProposalRepository{
		proposals: map[string]entities.Proposal{},
		events:    map[string][]entities.ProposalEvent{},
	}
}

// FailEventWrites makes every subsequent event write fail, together with the
// state change it belongs to.
func (r *ProposalRepository) FailEventWrites(fail bool) {
	r.mu.Lock()
	r.failEvents = fail
	r.mu.Unlock()
}

func (r *ProposalRepository) Create(_ context.Context, p entities.Proposal, ev entities.ProposalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proposals[p.ID]; ok {
		return interfaces.ErrConditionFailed
	}
	if r.failEvents {
		return errEventWrite
	}
	r.proposals[p.ID] = p.Clone()
	r.events[p.ID] = append(r.events[p.ID], ev)
	return nil
}

func (r *ProposalRepository) GetByID(_ context.Context, id string) (entities.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok {
		return entities.Proposal{}, nil
	}
	return p.Clone(), nil
}

func (r *ProposalRepository) Transition(_ context.Context, next entities.Proposal, cond interfaces.TransitionCondition, ev entities.ProposalEvent) (entities.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.proposals[next.ID]
	if !ok || current.Revision != next.Revision || !conditionHolds(current, cond) {
		return entities.Proposal{}, interfaces.ErrConditionFailed
	}
	if r.failEvents {
		return entities.Proposal{}, errEventWrite
	}
	stored := next.Clone()
	stored.Revision++
	r.proposals[next.ID] = stored
	r.events[next.ID] = append(r.events[next.ID], ev)
	return stored.Clone(), nil
}

func (r *ProposalRepository) AppendEvent(_ context.Context, ev entities.ProposalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failEvents {
		return errEventWrite
	}
	r.events[ev.ProposalID] = append(r.events[ev.ProposalID], ev)
	return nil
}

func (r *ProposalRepository) ListEvents(_ context.Context, proposalID string) ([]entities.ProposalEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]entities.ProposalEvent(nil), r.events[proposalID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func conditionHolds(current entities.Proposal, cond interfaces.TransitionCondition) bool {
	if len(cond.FromStatuses) > 0 {
		match := false
		for _, s := range cond.FromStatuses {
			if current.Status == s {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	if cond.TokenUnused && current.Tokens.IsUsed {
		return false
	}
	if cond.TokenHash != "" && current.Tokens.ApproveTokenHash != cond.TokenHash {
		return false
	}
	return true
}
