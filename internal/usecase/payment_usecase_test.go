package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"
	mock_interfaces "clearing_proposals/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type confirmerStub struct {
	calls []MarkPaidCommand
	err   error
}

func (c *confirmerStub) MarkPaid(_ context.Context, cmd MarkPaidCommand) (entities.Proposal, error) {
	c.calls = append(c.calls, cmd)
	if c.err != nil {
		return entities.Proposal{}, c.err
	}
	return entities.Proposal{ID: cmd.ProposalID, Status: entities.ProposalStatusPaid}, nil
}

func TestPaymentUseCase_HandleNotification_Validations(t *testing.T) {
	t.Run("empty payment id", func(t *testing.T) {
		uc := NewPaymentUseCase(nil, nil, nil, nil)
		_, err := uc.HandleNotification(context.Background(), " ")
		if !errors.Is(err, ErrInvalidPaymentID) {
			t.Fatalf("expected ErrInvalidPaymentID, got %v", err)
		}
	})

	t.Run("gateway not configured", func(t *testing.T) {
		uc := NewPaymentUseCase(nil, nil, nil, nil)
		_, err := uc.HandleNotification(context.Background(), "123")
		if err == nil || err.Error() != "payment gateway not configured" {
			t.Fatalf("expected gateway not configured error, got %v", err)
		}
	})

	t.Run("payment without reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewPaymentUseCase(nil, gateway, nil, nil)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{ID: "123", Status: "approved"}, nil)

		_, err := uc.HandleNotification(context.Background(), "123")
		if !errors.Is(err, ErrPaymentNotLinked) {
			t.Fatalf("expected ErrPaymentNotLinked, got %v", err)
		}
	})
}

func TestPaymentUseCase_HandleNotification_GatewayErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "unauthorized", err: errors.New(`{"error":"unauthorized"}`), want: ErrPaymentGatewayUnauthorized},
		{name: "bad request", err: errors.New(`{"status":400}`), want: ErrPaymentGatewayBadRequest},
		{name: "unknown", err: errors.New("boom"), want: ErrDependencyFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
			uc := NewPaymentUseCase(nil, gateway, nil, nil)

			gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{}, tc.err)

			_, err := uc.HandleNotification(context.Background(), "123")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrDependencyFailure) {
				t.Fatalf("gateway errors must be dependency failures, got %v", err)
			}
		})
	}
}

func TestPaymentUseCase_HandleNotification_Reconciles(t *testing.T) {
	raw := json.RawMessage(`{"id":123,"status":"approved"}`)

	t.Run("approved payment updates pending session and marks paid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		confirmer := &confirmerStub{}
		uc := NewPaymentUseCase(repo, gateway, confirmer, nil)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{
			ID: "123", Status: "approved", ExternalReference: "prop-1", Amount: 1312.5, Raw: raw,
		}, nil)
		repo.EXPECT().ListByProposalID(gomock.Any(), "prop-1").Return([]entities.ProposalPayment{
			{ID: "pref-1", ProposalID: "prop-1", Status: entities.PaymentStatusPending},
		}, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "pref-1", entities.PaymentStatusApproved, "123", raw).
			Return(entities.ProposalPayment{ID: "pref-1", ProposalID: "prop-1", ProviderPaymentID: "123", Status: entities.PaymentStatusApproved}, nil)

		res, err := uc.HandleNotification(context.Background(), "123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != entities.PaymentStatusApproved || res.ID != "pref-1" {
			t.Fatalf("unexpected payment: %+v", res)
		}
		if len(confirmer.calls) != 1 {
			t.Fatalf("expected one MarkPaid call, got %d", len(confirmer.calls))
		}
		got := confirmer.calls[0]
		if got.ProposalID != "prop-1" || got.ProviderPaymentID != "123" || got.Amount != 1312.5 {
			t.Fatalf("unexpected mark paid command: %+v", got)
		}
	})

	t.Run("known provider payment id wins over pending session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewPaymentUseCase(repo, gateway, &confirmerStub{}, nil)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{
			ID: "123", Status: "rejected", ExternalReference: "prop-1",
		}, nil)
		repo.EXPECT().ListByProposalID(gomock.Any(), "prop-1").Return([]entities.ProposalPayment{
			{ID: "pref-2", ProposalID: "prop-1", Status: entities.PaymentStatusPending},
			{ID: "pref-1", ProposalID: "prop-1", ProviderPaymentID: "123", Status: entities.PaymentStatusPending},
		}, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "pref-1", entities.PaymentStatusDenied, "123", gomock.Any()).
			Return(entities.ProposalPayment{ID: "pref-1", Status: entities.PaymentStatusDenied}, nil)

		res, err := uc.HandleNotification(context.Background(), "123")
		if err != nil || res.Status != entities.PaymentStatusDenied {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
	})

	t.Run("unknown session creates record and does not mark paid when pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		confirmer := &confirmerStub{}
		uc := NewPaymentUseCase(repo, gateway, confirmer, nil)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{
			ID: "123", Status: "in_process", ExternalReference: "prop-1", Amount: 10, Raw: raw,
		}, nil)
		repo.EXPECT().ListByProposalID(gomock.Any(), "prop-1").Return(nil, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.ProposalPayment{})).DoAndReturn(
			func(_ context.Context, p entities.ProposalPayment) (entities.ProposalPayment, error) {
				if p.ID != "123" || p.ProposalID != "prop-1" || p.Status != entities.PaymentStatusPending {
					t.Fatalf("unexpected payment: %+v", p)
				}
				if p.Date.IsZero() {
					t.Fatalf("date must be set")
				}
				if p.ProviderPayload["status"] != "approved" {
					t.Fatalf("provider payload should be parsed from raw")
				}
				return p, nil
			},
		)

		if _, err := uc.HandleNotification(context.Background(), "123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(confirmer.calls) != 0 {
			t.Fatalf("pending payment must not mark paid")
		}
	})

	t.Run("mark paid failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewPaymentUseCase(repo, gateway, &confirmerStub{err: ErrInvalidTransition}, nil)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{
			ID: "123", Status: "approved", ExternalReference: "prop-1",
		}, nil)
		repo.EXPECT().ListByProposalID(gomock.Any(), "prop-1").Return(nil, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p entities.ProposalPayment) (entities.ProposalPayment, error) { return p, nil },
		)

		_, err := uc.HandleNotification(context.Background(), "123")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("repository error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewPaymentUseCase(repo, gateway, &confirmerStub{}, nil)

		gateway.EXPECT().GetPayment(gomock.Any(), "123").Return(interfaces.ProviderPayment{
			ID: "123", Status: "approved", ExternalReference: "prop-1",
		}, nil)
		repo.EXPECT().ListByProposalID(gomock.Any(), "prop-1").Return(nil, errors.New("db"))

		_, err := uc.HandleNotification(context.Background(), "123")
		if err == nil || err.Error() != "db" {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestPaymentUseCase_Getters(t *testing.T) {
	t.Run("GetByID invalid", func(t *testing.T) {
		uc := NewPaymentUseCase(nil, nil, nil, nil)
		_, err := uc.GetByID(context.Background(), "")
		if !errors.Is(err, ErrInvalidPaymentID) {
			t.Fatalf("expected ErrInvalidPaymentID, got %v", err)
		}
	})

	t.Run("GetByID not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(repo, nil, nil, nil)
		repo.EXPECT().GetByID(gomock.Any(), "id-1").Return(entities.ProposalPayment{}, nil)

		_, err := uc.GetByID(context.Background(), "id-1")
		if !errors.Is(err, ErrPaymentNotFound) {
			t.Fatalf("expected ErrPaymentNotFound, got %v", err)
		}
	})

	t.Run("GetByID success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(repo, nil, nil, nil)
		repo.EXPECT().GetByID(gomock.Any(), "id-1").Return(entities.ProposalPayment{ID: "id-1"}, nil)

		res, err := uc.GetByID(context.Background(), " id-1 ")
		if err != nil || res.ID != "id-1" {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
	})

	t.Run("ListByProposalID invalid", func(t *testing.T) {
		uc := NewPaymentUseCase(nil, nil, nil, nil)
		_, err := uc.ListByProposalID(context.Background(), " ")
		if !errors.Is(err, ErrInvalidProposalID) {
			t.Fatalf("expected ErrInvalidProposalID, got %v", err)
		}
	})

	t.Run("ListByProposalID success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(repo, nil, nil, nil)
		expected := []entities.ProposalPayment{{ID: "p1", Date: time.Now()}}
		repo.EXPECT().ListByProposalID(gomock.Any(), "prop-1").Return(expected, nil)

		res, err := uc.ListByProposalID(context.Background(), " prop-1 ")
		if err != nil || len(res) != 1 || res[0].ID != "p1" {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
	})
}

func TestPaymentUseCase_GatewayErrorClassifiers(t *testing.T) {
	if isGatewayBadRequest(nil) || isGatewayUnauthorized(nil) {
		t.Fatalf("nil error must not classify")
	}
	if !isGatewayBadRequest(errors.New(`{"error":"bad_request"}`)) {
		t.Fatalf("expected bad request")
	}
	if !isGatewayUnauthorized(errors.New(`{"status":401}`)) {
		t.Fatalf("expected unauthorized")
	}
}
