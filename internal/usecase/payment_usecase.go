package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/infrastructure/metrics"
	"clearing_proposals/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	ErrPaymentNotFound            = errors.New("payment not found")
	ErrInvalidPaymentID           = errors.New("invalid payment id")
	ErrPaymentNotLinked           = errors.New("payment has no proposal reference")
	ErrPaymentGatewayBadRequest   = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized = errors.New("payment gateway unauthorized")
)

// IPaymentConfirmer is satisfied by the proposal orchestrator.
type IPaymentConfirmer interface {
	MarkPaid(ctx context.Context, cmd MarkPaidCommand) (entities.Proposal, error)
}

//go:generate mockgen -destination=../adapter/http/handlers/mocks/mock_payment_usecase.go -package=mocks clearing_proposals/internal/usecase IPaymentUseCase

// IPaymentUseCase reconciles provider notifications with deposit payments.
//
// Flow:
//   - the provider notifies a payment id (webhook);
//   - the payment is fetched from the provider (never trusted from the body);
//   - the local record is updated (or created) with the provider status;
//   - approved payments mark the proposal paid.
type IPaymentUseCase interface {
	HandleNotification(ctx context.Context, providerPaymentID string) (entities.ProposalPayment, error)
	GetByID(ctx context.Context, id string) (entities.ProposalPayment, error)
	ListByProposalID(ctx context.Context, proposalID string) ([]entities.ProposalPayment, error)
}

type PaymentUseCase struct {
	repo      interfaces.IPaymentRepository
	gateway   interfaces.IPaymentGateway
	confirmer IPaymentConfirmer
	logger    *zap.Logger
	now       func() time.Time
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, gateway interfaces.IPaymentGateway, confirmer IPaymentConfirmer, l *zap.Logger) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, gateway: gateway, confirmer: confirmer, logger: logger.OrNop(l), now: time.Now}
}

func (u *PaymentUseCase) HandleNotification(ctx context.Context, providerPaymentID string) (entities.ProposalPayment, error) {
	providerPaymentID = strings.TrimSpace(providerPaymentID)
	if providerPaymentID == "" {
		return entities.ProposalPayment{}, ErrInvalidPaymentID
	}
	if u.gateway == nil {
		u.logger.Error("[payment][usecase] gateway not configured", zap.String("provider_payment_id", providerPaymentID))
		return entities.ProposalPayment{}, errors.New("payment gateway not configured")
	}

	start := time.Now()
	info, err := u.gateway.GetPayment(ctx, providerPaymentID)
	metrics.DependencyCalls.WithLabelValues("payments_get", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		u.logger.Error("[payment][usecase] payment lookup failed", zap.String("provider_payment_id", providerPaymentID), zap.Error(err))
		if isGatewayUnauthorized(err) {
			return entities.ProposalPayment{}, fmt.Errorf("%w: %w", ErrDependencyFailure, ErrPaymentGatewayUnauthorized)
		}
		if isGatewayBadRequest(err) {
			return entities.ProposalPayment{}, fmt.Errorf("%w: %w", ErrDependencyFailure, ErrPaymentGatewayBadRequest)
		}
		return entities.ProposalPayment{}, dependencyError("payments", err)
	}

	proposalID := strings.TrimSpace(info.ExternalReference)
	if proposalID == "" {
		u.logger.Warn("[payment][usecase] payment without external_reference", zap.String("provider_payment_id", providerPaymentID))
		return entities.ProposalPayment{}, ErrPaymentNotLinked
	}
	status := entities.PaymentStatusFromProvider(info.Status)
	u.logger.Info("[payment][usecase] provider payment loaded",
		zap.String("provider_payment_id", providerPaymentID), zap.String("proposal_id", proposalID),
		zap.String("provider_status", info.Status), zap.String("status", string(status)))

	payment, err := u.upsert(ctx, proposalID, providerPaymentID, status, info)
	if err != nil {
		return entities.ProposalPayment{}, err
	}

	if status == entities.PaymentStatusApproved && u.confirmer != nil {
		if _, err := u.confirmer.MarkPaid(ctx, MarkPaidCommand{
			ProposalID:        proposalID,
			ProviderPaymentID: providerPaymentID,
			Amount:            info.Amount,
		}); err != nil {
			u.logger.Error("[payment][usecase] mark paid failed",
				zap.String("proposal_id", proposalID), zap.String("provider_payment_id", providerPaymentID), zap.Error(err))
			return payment, err
		}
	}
	return payment, nil
}

// upsert attaches the provider payment to the pending record opened at
// checkout, or creates a record when the session is unknown.
func (u *PaymentUseCase) upsert(ctx context.Context, proposalID, providerPaymentID string, status entities.PaymentStatus, info interfaces.ProviderPayment) (entities.ProposalPayment, error) {
	existing, err := u.repo.ListByProposalID(ctx, proposalID)
	if err != nil {
		return entities.ProposalPayment{}, err
	}
	target := ""
	for _, p := range existing {
		if p.ProviderPaymentID == providerPaymentID {
			target = p.ID
			break
		}
	}
	if target == "" {
		for _, p := range existing {
			if p.ProviderPaymentID == "" && p.Status == entities.PaymentStatusPending {
				target = p.ID
				break
			}
		}
	}
	if target != "" {
		return u.repo.UpdateStatus(ctx, target, status, providerPaymentID, info.Raw)
	}

	var parsed map[string]interface{}
	if len(info.Raw) > 0 {
		if err := json.Unmarshal(info.Raw, &parsed); err != nil {
			u.logger.Warn("[payment][usecase] provider payload unmarshal failed", zap.String("provider_payment_id", providerPaymentID), zap.Error(err))
		}
	}
	return u.repo.Create(ctx, entities.ProposalPayment{
		ID:                 providerPaymentID,
		ProposalID:         proposalID,
		ProviderPaymentID:  providerPaymentID,
		Amount:             info.Amount,
		Date:               u.now().UTC(),
		Status:             status,
		ProviderPayloadRaw: info.Raw,
		ProviderPayload:    parsed,
	})
}

func isGatewayBadRequest(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400")
}

func isGatewayUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401")
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.ProposalPayment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ProposalPayment{}, ErrInvalidPaymentID
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.ProposalPayment{}, err
	}
	if p.ID == "" {
		return entities.ProposalPayment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) ListByProposalID(ctx context.Context, proposalID string) ([]entities.ProposalPayment, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return nil, ErrInvalidProposalID
	}
	return u.repo.ListByProposalID(ctx, proposalID)
}
