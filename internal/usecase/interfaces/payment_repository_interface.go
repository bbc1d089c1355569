package interfaces

import (
	"context"
	"encoding/json"

	"clearing_proposals/internal/domain/entities"
)

// IPaymentRepository abstracts persistence for deposit payments.
//
//go:generate mockgen -source=payment_repository_interface.go -destination=mocks/mock_payment_repository.go -package=mock_interfaces
type IPaymentRepository interface {
	Create(ctx context.Context, p entities.ProposalPayment) (entities.ProposalPayment, error)
	GetByID(ctx context.Context, id string) (entities.ProposalPayment, error)
	ListByProposalID(ctx context.Context, proposalID string) ([]entities.ProposalPayment, error)
	UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, providerPaymentID string, raw json.RawMessage) (entities.ProposalPayment, error)
}
