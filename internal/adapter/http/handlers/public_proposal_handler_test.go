package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"clearing_proposals/internal/adapter/http/handlers/mocks"
	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newPublicRouter(uc usecase.IProposalUseCase) *gin.Engine {
	h := NewPublicProposalHandler(uc, nil)
	r := gin.New()
	r.GET("/v1/public/proposals/:id", h.View)
	r.POST("/v1/public/proposals/:id/accept", h.Accept)
	r.POST("/v1/public/proposals/:id/checkout", h.Checkout)
	return r
}

func TestPublicProposalHandler_View(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := newPublicRouter(mocks.NewMockIProposalUseCase(ctrl))

		w := doRequest(r, http.MethodGet, "/v1/public/proposals/prop-1", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		r := newPublicRouter(uc)

		uc.EXPECT().View(gomock.Any(), "prop-1", "bad").Return(entities.Proposal{}, usecase.ErrTokenInvalid)

		w := doRequest(r, http.MethodGet, "/v1/public/proposals/prop-1?token=bad", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Code != "TOKEN_INVALID" || body.Message != "Invalid or expired link" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		r := newPublicRouter(uc)

		uc.EXPECT().View(gomock.Any(), "prop-1", "good").Return(entities.Proposal{
			ID:       "prop-1",
			Status:   entities.ProposalStatusViewed,
			Customer: entities.Customer{Name: "Ada", Email: "ada@example.com"},
			Computed: entities.ComputedTotals{Total: 2700, DepositAmount: 540},
		}, nil)

		w := doRequest(r, http.MethodGet, "/v1/public/proposals/prop-1?token=good", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Header().Get("Cache-Control") != "no-store" {
			t.Fatalf("expected no-store cache header")
		}
		var body map[string]interface{}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["status"] != "viewed" || body["deposit_required"] != true || body["customer_name"] != "Ada" {
			t.Fatalf("unexpected body: %v", body)
		}
		if _, ok := body["customer_email"]; ok {
			t.Fatalf("public view must not expose the email")
		}
	})
}

func TestPublicProposalHandler_Accept(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := newPublicRouter(mocks.NewMockIProposalUseCase(ctrl))

		w := doRequest(r, http.MethodPost, "/v1/public/proposals/prop-1/accept", `{"full_name":"Ada"}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	errs := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already used", usecase.ErrTokenAlreadyUsed, http.StatusConflict, "TOKEN_ALREADY_USED"},
		{"not available", usecase.ErrNotAvailableForAcceptance, http.StatusConflict, "NOT_AVAILABLE_FOR_ACCEPTANCE"},
		{"invalid token", usecase.ErrTokenInvalid, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"missing consent", &usecase.ValidationError{Field: "consent", Message: "must be given"}, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := mocks.NewMockIProposalUseCase(ctrl)
			r := newPublicRouter(uc)

			uc.EXPECT().Accept(gomock.Any(), gomock.Any()).Return(usecase.AcceptResult{}, tt.err)

			w := doRequest(r, http.MethodPost, "/v1/public/proposals/prop-1/accept", `{"token":"t","full_name":"Ada","consent":true}`, nil)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if body := decodeError(t, w); body.Code != tt.code {
				t.Fatalf("expected %s, got %s", tt.code, body.Code)
			}
		})
	}

	t.Run("success passes client metadata", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		r := newPublicRouter(uc)

		uc.EXPECT().Accept(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd usecase.AcceptCommand) (usecase.AcceptResult, error) {
				if cmd.ProposalID != "prop-1" || cmd.Token != "t" || !cmd.Consent || cmd.UserAgent != "test-agent" || cmd.IP == "" {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				return usecase.AcceptResult{
					Proposal:        entities.Proposal{ID: "prop-1", Status: entities.ProposalStatusAccepted},
					DepositRequired: true,
					DepositAmount:   540,
					PaymentURL:      "https://pay.example/1",
				}, nil
			},
		)

		w := doRequest(r, http.MethodPost, "/v1/public/proposals/prop-1/accept",
			`{"token":"t","full_name":"Ada","consent":true}`, map[string]string{"User-Agent": "test-agent"})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]interface{}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["status"] != "accepted" || body["deposit_amount"] != float64(540) || body["payment_url"] != "https://pay.example/1" {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestPublicProposalHandler_Checkout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("no deposit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		r := newPublicRouter(uc)

		uc.EXPECT().Checkout(gomock.Any(), "prop-1", "t").Return(interfaces.CheckoutSession{}, usecase.ErrNoDepositRequired)

		w := doRequest(r, http.MethodPost, "/v1/public/proposals/prop-1/checkout", `{"token":"t"}`, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		r := newPublicRouter(uc)

		uc.EXPECT().Checkout(gomock.Any(), "prop-1", "t").Return(interfaces.CheckoutSession{SessionID: "pref-1", URL: "https://pay"}, nil)

		w := doRequest(r, http.MethodPost, "/v1/public/proposals/prop-1/checkout", `{"token":"t"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Body.String() != `{"session_id":"pref-1","url":"https://pay"}` {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}
