package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// MercadoPagoGateway opens Checkout Pro preferences for deposits and reads
// payments back when a notification arrives. The proposal id travels as
// external_reference.
type MercadoPagoGateway struct {
	preferences preferenceCreator
	payments    paymentGetter
	sandbox     bool
	logger      *zap.Logger

	mockMode     bool
	mockBaseURL  string
	mu           sync.Mutex
	mockSessions map[string]interfaces.CheckoutRequest
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, l *zap.Logger) (*MercadoPagoGateway, error) {
	l = logger.OrNop(l)
	if accessToken == "" {
		l.Warn("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		l.Error("[payment][gateway] failed creating sdk config", zap.Error(err))
		return nil, err
	}
	l.Info("[payment][gateway] Mercado Pago client initialized")

	return &MercadoPagoGateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		sandbox:     strings.HasPrefix(accessToken, "TEST-"),
		logger:      l,
	}, nil
}

// NewMockGateway returns a gateway that never leaves the process. Sessions it
// opens are reported back as approved payments with the same id.
func NewMockGateway(checkoutBaseURL string, l *zap.Logger) *MercadoPagoGateway {
	l = logger.OrNop(l)
	l.Info("[payment][gateway] mock mode enabled")
	return &MercadoPagoGateway{
		mockMode:     true,
		mockBaseURL:  strings.TrimRight(checkoutBaseURL, "/"),
		mockSessions: map[string]interfaces.CheckoutRequest{},
		logger:       l,
	}
}

func (g *MercadoPagoGateway) CreateCheckoutSession(ctx context.Context, req interfaces.CheckoutRequest) (interfaces.CheckoutSession, error) {
	if g == nil {
		return interfaces.CheckoutSession{}, ErrMercadoPagoGatewayNotConfigured
	}
	if req.AmountCents <= 0 {
		return interfaces.CheckoutSession{}, fmt.Errorf("invalid checkout amount %d", req.AmountCents)
	}
	if g.mockMode {
		id := "mock-" + uuid.NewString()
		g.mu.Lock()
		g.mockSessions[id] = req
		g.mu.Unlock()
		g.logger.Info("[payment][gateway] mock checkout created", zap.String("session_id", id), zap.String("proposal_id", req.ProposalID))
		return interfaces.CheckoutSession{SessionID: id, URL: g.mockBaseURL + "/mock-checkout/" + id}, nil
	}
	if g.preferences == nil {
		return interfaces.CheckoutSession{}, ErrMercadoPagoGatewayNotConfigured
	}

	payload, err := json.Marshal(preferencePayload(req))
	if err != nil {
		return interfaces.CheckoutSession{}, err
	}
	var preq preference.Request
	if err := json.Unmarshal(payload, &preq); err != nil {
		g.logger.Error("[payment][gateway] preference payload unmarshal failed", zap.Error(err))
		return interfaces.CheckoutSession{}, err
	}

	resp, err := g.preferences.Create(ctx, preq)
	if err != nil {
		g.logger.Error("[payment][gateway] sdk preference create failed", zap.String("proposal_id", req.ProposalID), zap.Error(err))
		return interfaces.CheckoutSession{}, err
	}

	var out struct {
		ID               string `json:"id"`
		InitPoint        string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}
	if err := remarshal(resp, &out); err != nil {
		return interfaces.CheckoutSession{}, err
	}
	url := out.InitPoint
	if g.sandbox && out.SandboxInitPoint != "" {
		url = out.SandboxInitPoint
	}
	if out.ID == "" || url == "" {
		return interfaces.CheckoutSession{}, errors.New("mercado pago returned an incomplete preference")
	}
	g.logger.Info("[payment][gateway] preference created", zap.String("session_id", out.ID), zap.String("proposal_id", req.ProposalID))
	return interfaces.CheckoutSession{SessionID: out.ID, URL: url}, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, providerPaymentID string) (interfaces.ProviderPayment, error) {
	if g == nil {
		return interfaces.ProviderPayment{}, ErrMercadoPagoGatewayNotConfigured
	}
	if g.mockMode {
		return g.mockPayment(providerPaymentID)
	}
	if g.payments == nil {
		return interfaces.ProviderPayment{}, ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(strings.TrimSpace(providerPaymentID))
	if err != nil {
		return interfaces.ProviderPayment{}, fmt.Errorf("invalid mercado pago payment id %q", providerPaymentID)
	}
	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		g.logger.Error("[payment][gateway] sdk payment get failed", zap.Int("payment_id", id), zap.Error(err))
		return interfaces.ProviderPayment{}, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		g.logger.Error("[payment][gateway] response marshal failed", zap.Error(err))
		return interfaces.ProviderPayment{}, err
	}
	var out struct {
		ID                int64   `json:"id"`
		Status            string  `json:"status"`
		ExternalReference string  `json:"external_reference"`
		TransactionAmount float64 `json:"transaction_amount"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return interfaces.ProviderPayment{}, err
	}
	g.logger.Info("[payment][gateway] payment loaded",
		zap.Int64("payment_id", out.ID), zap.String("status", out.Status), zap.String("external_reference", out.ExternalReference))

	return interfaces.ProviderPayment{
		ID:                strconv.FormatInt(out.ID, 10),
		Status:            out.Status,
		ExternalReference: out.ExternalReference,
		Amount:            out.TransactionAmount,
		Raw:               raw,
	}, nil
}

func (g *MercadoPagoGateway) mockPayment(id string) (interfaces.ProviderPayment, error) {
	g.mu.Lock()
	req, ok := g.mockSessions[id]
	g.mu.Unlock()
	if !ok {
		return interfaces.ProviderPayment{}, fmt.Errorf(`{"status":404,"message":"payment %s not found"}`, id)
	}
	amount := float64(req.AmountCents) / 100
	now := time.Now().UTC().Format(time.RFC3339Nano)
	raw, err := json.Marshal(map[string]any{
		"id":                 id,
		"status":             "approved",
		"status_detail":      "accredited",
		"external_reference": req.ProposalID,
		"transaction_amount": amount,
		"currency_id":        req.Currency,
		"date_created":       now,
		"date_approved":      now,
	})
	if err != nil {
		return interfaces.ProviderPayment{}, err
	}
	return interfaces.ProviderPayment{
		ID:                id,
		Status:            "approved",
		ExternalReference: req.ProposalID,
		Amount:            amount,
		Raw:               raw,
	}, nil
}

func preferencePayload(req interfaces.CheckoutRequest) map[string]any {
	payload := map[string]any{
		"external_reference": req.ProposalID,
		"items": []map[string]any{{
			"id":          req.ProposalID,
			"title":       req.Title,
			"quantity":    1,
			"currency_id": req.Currency,
			"unit_price":  math.Round(float64(req.AmountCents)) / 100,
		}},
		"back_urls": map[string]any{
			"success": req.SuccessURL,
			"pending": req.SuccessURL,
			"failure": req.CancelURL,
		},
	}
	if req.SuccessURL != "" {
		payload["auto_return"] = "approved"
	}
	if req.CustomerEmail != "" || req.CustomerName != "" {
		payload["payer"] = map[string]any{"name": req.CustomerName, "email": req.CustomerEmail}
	}
	return payload
}

func remarshal(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
