package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	request "clearing_proposals/internal/adapter/http/dto/request"
	response "clearing_proposals/internal/adapter/http/dto/response"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/infrastructure/payments"
	"clearing_proposals/internal/usecase"
	"clearing_proposals/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler receives Mercado Pago notifications and exposes deposit
// payments to the back office.
type PaymentHandler struct {
	usecase       usecase.IPaymentUseCase
	webhookSecret string
	logger        *zap.Logger
}

func NewPaymentHandler(uc usecase.IPaymentUseCase, webhookSecret string, l *zap.Logger) *PaymentHandler {
	return &PaymentHandler{usecase: uc, webhookSecret: webhookSecret, logger: logger.OrNop(l)}
}

// MercadoPagoWebhook godoc
// @Summary      Mercado Pago payment notification
// @Description  The payment is re-fetched from Mercado Pago; the body is never trusted.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.WebhookResponse
// @Failure      401  {object}  pkg.HTTPError
// @Failure      502  {object}  pkg.HTTPError
// @Router       /webhooks/mercadopago [post]
func (h *PaymentHandler) MercadoPagoWebhook(c *gin.Context) {
	notification, err := readNotification(c)
	if err != nil {
		h.logger.Info("[payment][webhook] invalid payload", zap.Error(err))
		writeError(c, errInvalidRequest)
		return
	}

	paymentID := notification.ResolvePaymentID(
		firstNonEmpty(c.Query("topic"), c.Query("type")), c.Query("id"), c.Query("data.id"))
	if paymentID == "" {
		h.logger.Debug("[payment][webhook] ignored non-payment notification", zap.String("type", notification.Type))
		c.JSON(http.StatusOK, response.WebhookResponse{Status: "ignored"})
		return
	}

	if err := payments.VerifyWebhookSignature(h.webhookSecret, c.GetHeader("x-signature"), c.GetHeader("x-request-id"), paymentID); err != nil {
		h.logger.Warn("[payment][webhook] signature rejected", zap.String("provider_payment_id", paymentID), zap.Error(err))
		appErr := pkg.NewDomainError("INVALID_SIGNATURE", "Invalid webhook signature", err, http.StatusUnauthorized)
		writeError(c, appErr)
		return
	}

	payment, err := h.usecase.HandleNotification(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, usecase.ErrPaymentNotLinked) || errors.Is(err, usecase.ErrProposalNotFound) {
			h.logger.Warn("[payment][webhook] notification not linked to a proposal", zap.String("provider_payment_id", paymentID), zap.Error(err))
			c.JSON(http.StatusOK, response.WebhookResponse{Status: "ignored", PaymentID: paymentID})
			return
		}
		h.logger.Error("[payment][webhook] processing failed", zap.String("provider_payment_id", paymentID), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	h.logger.Info("[payment][webhook] processed",
		zap.String("provider_payment_id", paymentID), zap.String("proposal_id", payment.ProposalID), zap.String("status", string(payment.Status)))

	c.JSON(http.StatusOK, response.WebhookResponse{Status: "processed", PaymentID: payment.ID, ProposalID: payment.ProposalID})
}

// MockCheckout completes a mock checkout session as if the customer paid,
// then reconciles it exactly like a provider notification.
func (h *PaymentHandler) MockCheckout(c *gin.Context) {
	sessionID := c.Param("session_id")
	payment, err := h.usecase.HandleNotification(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Warn("[payment][mock] checkout failed", zap.String("session_id", sessionID), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.WebhookResponse{Status: "processed", PaymentID: payment.ID, ProposalID: payment.ProposalID})
}

// GetLatestByProposalID returns the most recent payment for a proposal.
func (h *PaymentHandler) GetLatestByProposalID(c *gin.Context) {
	proposalID := c.Param("id")

	list, err := h.usecase.ListByProposalID(c.Request.Context(), proposalID)
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	if len(list) == 0 {
		writeError(c, pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound))
		return
	}

	latest := list[0]
	for _, p := range list[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	c.JSON(http.StatusOK, response.FromPayment(latest))
}

// readNotification accepts an empty body (IPN sends everything in the query
// string) but rejects malformed JSON.
func readNotification(c *gin.Context) (request.MercadoPagoNotification, error) {
	var n request.MercadoPagoNotification
	raw, err := c.GetRawData()
	if err != nil {
		return n, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return n, nil
	}
	if !json.Valid(raw) {
		return n, errors.New("request body is not valid json")
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return n, err
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
