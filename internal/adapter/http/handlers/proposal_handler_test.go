package handlers

import (
	"context"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clearing_proposals/internal/adapter/http/handlers/mocks"
	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase"
	"clearing_proposals/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

const validGenerateBody = `{
	"template_id":"standard",
	"customer":{"name":"Ada","email":"ada@example.com"},
	"inputs":{"acreage":2.5,"package_id":"medium","address":"12 Oak Rd","obstacles":["creek"]}
}`

func doRequest(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkg.HTTPError {
	t.Helper()
	var out pkg.HTTPError
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestProposalHandler_Generate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals", h.Generate)

		w := doRequest(r, http.MethodPost, "/v1/proposals", "{", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals", h.Generate)

		w := doRequest(r, http.MethodPost, "/v1/proposals", `{"template_id":"standard"}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("validation error carries field", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals", h.Generate)

		uc.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(usecase.GenerateResult{}, &usecase.ValidationError{Field: "customer.email", Message: "must be a valid address"})

		w := doRequest(r, http.MethodPost, "/v1/proposals", validGenerateBody, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Code != "INVALID_REQUEST" || !strings.Contains(body.Message, "customer.email") {
			t.Fatalf("unexpected error body: %+v", body)
		}
	})

	t.Run("template not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals", h.Generate)

		uc.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(usecase.GenerateResult{}, usecase.ErrTemplateNotFound)

		w := doRequest(r, http.MethodPost, "/v1/proposals", validGenerateBody, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals", h.Generate)

		uc.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd usecase.GenerateCommand) (usecase.GenerateResult, error) {
				if cmd.TemplateID != "standard" || cmd.CreatedBy != "ops@example.com" || cmd.Inputs.Acreage != 2.5 {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				return usecase.GenerateResult{
					Proposal:     entities.Proposal{ID: "prop-1", Status: entities.ProposalStatusDraft, DocumentVersion: 1},
					PDFSignedURL: "https://assets/p.pdf",
				}, nil
			},
		)

		w := doRequest(r, http.MethodPost, "/v1/proposals", validGenerateBody, map[string]string{HeaderAdminUser: "ops@example.com"})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
		var body map[string]interface{}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["proposal_id"] != "prop-1" || body["version"] != float64(1) || body["pdf_signed_url"] != "https://assets/p.pdf" {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestProposalHandler_Send(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty body defaults sender", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals/:id/send", h.Send)

		uc.EXPECT().Send(gomock.Any(), "prop-1", defaultAdminUser).Return(usecase.SendResult{
			Proposal:   entities.Proposal{ID: "prop-1", Status: entities.ProposalStatusSent},
			EmailID:    "msg-1",
			ApproveURL: "https://example.com/p/prop-1?token=abc",
		}, nil)

		w := doRequest(r, http.MethodPost, "/v1/proposals/prop-1/send", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"email_id":"msg-1"`) {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("explicit sender", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIProposalUseCase(ctrl)
		h := NewProposalHandler(uc, nil)

		r := gin.New()
		r.POST("/v1/proposals/:id/send", h.Send)

		uc.EXPECT().Send(gomock.Any(), "prop-1", "jo").Return(usecase.SendResult{Proposal: entities.Proposal{ID: "prop-1"}}, nil)

		w := doRequest(r, http.MethodPost, "/v1/proposals/prop-1/send", `{"sent_by":"jo"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	mapped := []struct {
		err    error
		status int
		code   string
	}{
		{usecase.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{usecase.ErrProposalNotFound, http.StatusNotFound, "PROPOSAL_NOT_FOUND"},
		{fmt.Errorf("%w: email: smtp down", usecase.ErrDependencyFailure), http.StatusBadGateway, "DEPENDENCY_FAILURE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range mapped {
		t.Run(tt.code, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := mocks.NewMockIProposalUseCase(ctrl)
			h := NewProposalHandler(uc, nil)

			r := gin.New()
			r.POST("/v1/proposals/:id/send", h.Send)

			uc.EXPECT().Send(gomock.Any(), "prop-1", gomock.Any()).Return(usecase.SendResult{}, tt.err)

			w := doRequest(r, http.MethodPost, "/v1/proposals/prop-1/send", "", nil)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			body := decodeError(t, w)
			if body.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, body.Code)
			}
			if strings.Contains(body.Message, "smtp") || strings.Contains(body.Message, "boom") {
				t.Fatalf("raw cause leaked to client: %s", body.Message)
			}
		})
	}
}

func TestProposalHandler_GetByIDAndEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIProposalUseCase(ctrl)
	h := NewProposalHandler(uc, nil)

	r := gin.New()
	r.GET("/v1/proposals/:id", h.GetByID)
	r.GET("/v1/proposals/:id/events", h.ListEvents)

	uc.EXPECT().GetByID(gomock.Any(), "prop-1").Return(entities.Proposal{
		ID:     "prop-1",
		Status: entities.ProposalStatusSent,
		Tokens: entities.ProposalTokens{ApproveTokenHash: "deadbeef", ExpiresAt: time.Now().Add(time.Hour)},
	}, nil)
	uc.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Proposal{}, usecase.ErrProposalNotFound)
	uc.EXPECT().ListEvents(gomock.Any(), "prop-1").Return([]entities.ProposalEvent{
		{ID: "e1", ProposalID: "prop-1", Type: entities.EventProposalGenerated},
		{ID: "e2", ProposalID: "prop-1", Type: entities.EventProposalSent},
	}, nil)

	w := doRequest(r, http.MethodGet, "/v1/proposals/prop-1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "deadbeef") {
		t.Fatalf("token hash must not be exposed: %s", w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/v1/proposals/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/v1/proposals/prop-1/events", "", nil)
	var events []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil || len(events) != 2 || events[1]["type"] != "proposal.sent" {
		t.Fatalf("unexpected events body: %s", w.Body.String())
	}
}

func TestProposalHandler_Expire(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIProposalUseCase(ctrl)
	h := NewProposalHandler(uc, nil)

	r := gin.New()
	r.POST("/v1/proposals/:id/expire", h.Expire)

	uc.EXPECT().Expire(gomock.Any(), "fresh").Return(entities.Proposal{}, usecase.ErrNotExpired)
	uc.EXPECT().Expire(gomock.Any(), "stale").Return(entities.Proposal{ID: "stale", Status: entities.ProposalStatusExpired}, nil)

	if w := doRequest(r, http.MethodPost, "/v1/proposals/fresh/expire", "", nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	w := doRequest(r, http.MethodPost, "/v1/proposals/stale/expire", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"expired"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}
