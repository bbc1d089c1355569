package handlers

import (
	"net/http"
	"strconv"

	request "clearing_proposals/internal/adapter/http/dto/request"
	response "clearing_proposals/internal/adapter/http/dto/response"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	usecase usecase.ICatalogUseCase
	logger  *zap.Logger
}

func NewCatalogHandler(uc usecase.ICatalogUseCase, l *zap.Logger) *CatalogHandler {
	return &CatalogHandler{usecase: uc, logger: logger.OrNop(l)}
}

func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	t, err := h.usecase.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromTemplate(t))
}

// PutTemplate replaces the live template. Existing snapshots are unaffected.
func (h *CatalogHandler) PutTemplate(c *gin.Context) {
	id := c.Param("id")
	var payload request.TemplateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidRequest)
		return
	}

	t, err := h.usecase.UpsertTemplate(c.Request.Context(), payload.ToEntity(id))
	if err != nil {
		h.logger.Warn("[catalog][handler] upsert failed", zap.String("template_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromTemplate(t))
}

func (h *CatalogHandler) CreateSnapshot(c *gin.Context) {
	id := c.Param("id")
	s, err := h.usecase.CreateSnapshot(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("[catalog][handler] snapshot failed", zap.String("template_id", id), zap.Error(err))
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromSnapshot(s))
}

func (h *CatalogHandler) GetSnapshot(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		writeError(c, errInvalidRequest)
		return
	}
	s, err := h.usecase.GetSnapshot(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromSnapshot(s))
}
