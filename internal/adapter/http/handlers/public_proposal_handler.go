package handlers

import (
	"net/http"
	"strings"

	request "clearing_proposals/internal/adapter/http/dto/request"
	response "clearing_proposals/internal/adapter/http/dto/response"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PublicProposalHandler serves the customer-facing routes. The approval
// token is the only credential.
type PublicProposalHandler struct {
	usecase usecase.IProposalUseCase
	logger  *zap.Logger
}

func NewPublicProposalHandler(uc usecase.IProposalUseCase, l *zap.Logger) *PublicProposalHandler {
	return &PublicProposalHandler{usecase: uc, logger: logger.OrNop(l)}
}

// View godoc
// @Summary      View a proposal through its approval link
// @Tags         public
// @Produce      json
// @Param        id     path   string  true  "Proposal ID"
// @Param        token  query  string  true  "Approval token"
// @Success      200  {object}  response.PublicProposalResponse
// @Failure      401  {object}  pkg.HTTPError
// @Router       /public/proposals/{id} [get]
func (h *PublicProposalHandler) View(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	id := c.Param("id")
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		writeError(c, errTokenInvalid)
		return
	}

	p, err := h.usecase.View(c.Request.Context(), id, token)
	if err != nil {
		h.logger.Info("[proposal][public] view rejected", zap.String("proposal_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProposalPublic(p))
}

// Accept godoc
// @Summary      Accept a proposal
// @Description  Records the customer's consent. When a deposit is owed the payment link is returned.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Proposal ID"
// @Param        request  body  request.AcceptProposalRequest  true  "Acceptance"
// @Success      200  {object}  response.AcceptProposalResponse
// @Failure      401  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /public/proposals/{id}/accept [post]
func (h *PublicProposalHandler) Accept(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	id := c.Param("id")
	var payload request.AcceptProposalRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidRequest)
		return
	}

	result, err := h.usecase.Accept(c.Request.Context(), payload.ToCommand(id, c.ClientIP(), c.Request.UserAgent()))
	if err != nil {
		h.logger.Info("[proposal][public] accept rejected", zap.String("proposal_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	h.logger.Info("[proposal][public] accept success",
		zap.String("proposal_id", id), zap.Bool("deposit_required", result.DepositRequired))

	c.JSON(http.StatusOK, response.FromAcceptResult(result))
}

// Checkout godoc
// @Summary      Open the deposit checkout
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        id       path  string                           true  "Proposal ID"
// @Param        request  body  request.CheckoutProposalRequest  true  "Token"
// @Success      200  {object}  response.CheckoutResponse
// @Failure      409  {object}  pkg.HTTPError
// @Failure      502  {object}  pkg.HTTPError
// @Router       /public/proposals/{id}/checkout [post]
func (h *PublicProposalHandler) Checkout(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	id := c.Param("id")
	var payload request.CheckoutProposalRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidRequest)
		return
	}

	session, err := h.usecase.Checkout(c.Request.Context(), id, payload.Token)
	if err != nil {
		h.logger.Info("[proposal][public] checkout rejected", zap.String("proposal_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.CheckoutResponse{SessionID: session.SessionID, URL: session.URL})
}
