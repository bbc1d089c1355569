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

const (
	HeaderAdminUser  = "X-Admin-User"
	defaultAdminUser = "admin"
)

// ProposalHandler serves the back-office proposal routes.
type ProposalHandler struct {
	usecase usecase.IProposalUseCase
	logger  *zap.Logger
}

func NewProposalHandler(uc usecase.IProposalUseCase, l *zap.Logger) *ProposalHandler {
	return &ProposalHandler{usecase: uc, logger: logger.OrNop(l)}
}

// Generate godoc
// @Summary      Generate a proposal
// @Description  Snapshots the pricing template, computes totals and renders the PDF.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key  header  string                           true  "Admin API key"
// @Param        request      body    request.GenerateProposalRequest  true  "Proposal inputs"
// @Success      201  {object}  response.GenerateProposalResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /proposals [post]
func (h *ProposalHandler) Generate(c *gin.Context) {
	var payload request.GenerateProposalRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Info("[proposal][handler] generate invalid payload", zap.Error(err))
		writeError(c, errInvalidRequest)
		return
	}

	result, err := h.usecase.Generate(c.Request.Context(), payload.ToCommand(adminUser(c)))
	if err != nil {
		appErr := mapError(err)
		h.logger.Warn("[proposal][handler] generate failed", zap.String("template_id", payload.TemplateID), zap.Error(err))
		writeError(c, appErr)
		return
	}
	h.logger.Info("[proposal][handler] generate success", zap.String("proposal_id", result.Proposal.ID))

	c.JSON(http.StatusCreated, response.FromGenerateResult(result))
}

// Send godoc
// @Summary      Send a proposal to the customer
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key  header  string                       true   "Admin API key"
// @Param        id           path    string                       true   "Proposal ID"
// @Param        request      body    request.SendProposalRequest  false  "Sender"
// @Success      200  {object}  response.SendProposalResponse
// @Failure      409  {object}  pkg.HTTPError
// @Failure      502  {object}  pkg.HTTPError
// @Router       /proposals/{id}/send [post]
func (h *ProposalHandler) Send(c *gin.Context) {
	id := c.Param("id")
	var payload request.SendProposalRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			writeError(c, errInvalidRequest)
			return
		}
	}
	sentBy := strings.TrimSpace(payload.SentBy)
	if sentBy == "" {
		sentBy = adminUser(c)
	}

	result, err := h.usecase.Send(c.Request.Context(), id, sentBy)
	if err != nil {
		h.logger.Warn("[proposal][handler] send failed", zap.String("proposal_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	h.logger.Info("[proposal][handler] send success", zap.String("proposal_id", id), zap.String("email_id", result.EmailID))

	c.JSON(http.StatusOK, response.FromSendResult(result))
}

func (h *ProposalHandler) GetByID(c *gin.Context) {
	p, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProposal(p))
}

func (h *ProposalHandler) ListEvents(c *gin.Context) {
	events, err := h.usecase.ListEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromEvents(events))
}

func (h *ProposalHandler) Expire(c *gin.Context) {
	id := c.Param("id")
	p, err := h.usecase.Expire(c.Request.Context(), id)
	if err != nil {
		h.logger.Info("[proposal][handler] expire rejected", zap.String("proposal_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProposal(p))
}

func adminUser(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(HeaderAdminUser)); v != "" {
		return v
	}
	return defaultAdminUser
}
