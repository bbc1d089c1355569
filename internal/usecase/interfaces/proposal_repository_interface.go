package interfaces

import (
	"context"
	"errors"

	"clearing_proposals/internal/domain/entities"
)

// ErrConditionFailed is returned by repositories when a conditional write loses
// against the current stored state.
var ErrConditionFailed = errors.New("conditional write failed")

// TransitionCondition guards a proposal write. All set fields must hold on the
// stored record for the write to apply.
type TransitionCondition struct {
	FromStatuses []entities.ProposalStatus
	TokenUnused  bool
	TokenHash    string
}

// IProposalRepository abstracts persistence of the Proposal aggregate and its
// event log.
//
// Create and Transition commit the record and its event atomically: either both
// are stored or neither is. Transition also requires the stored revision to
// equal next.Revision and stores the record at the following revision, so a
// record read before a concurrent write can never overwrite it.
//
//go:generate mockgen -source=proposal_repository_interface.go -destination=mocks/mock_proposal_repository.go -package=mock_interfaces
type IProposalRepository interface {
	Create(ctx context.Context, p entities.Proposal, ev entities.ProposalEvent) error
	GetByID(ctx context.Context, id string) (entities.Proposal, error)
	Transition(ctx context.Context, next entities.Proposal, cond TransitionCondition, ev entities.ProposalEvent) (entities.Proposal, error)
	AppendEvent(ctx context.Context, ev entities.ProposalEvent) error
	ListEvents(ctx context.Context, proposalID string) ([]entities.ProposalEvent, error)
}
