package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/services/publisher"
)

// PublisherHandler serves /empresas.
type PublisherHandler struct {
	Publishers publisher.PublisherService
	Logger     *zap.Logger
}

func NewPublisherHandler(svc publisher.PublisherService, logger *zap.Logger) *PublisherHandler {
	return &PublisherHandler{Publishers: svc, Logger: logger}
}

// LookupCNPJHandler handles GET /empresas/cnpj/:cnpj without storing anything.
func (h *PublisherHandler) LookupCNPJHandler(c *gin.Context) {
	p, err := h.Publishers.LookupCNPJ(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		respondError(c, h.Logger, "CNPJ lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RegisterHandler handles POST /empresas/cadastrar.
func (h *PublisherHandler) RegisterHandler(c *gin.Context) {
	var req publisher.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Publishers.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, "Company registration failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PublisherHandler) ListHandler(c *gin.Context) {
	publishers, err := h.Publishers.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, "Failed to list companies", err)
		return
	}
	c.JSON(http.StatusOK, publishers)
}

func (h *PublisherHandler) GetHandler(c *gin.Context) {
	p, err := h.Publishers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, "Company not found", err)
		return
	}
	c.JSON(http.StatusOK, p)
}
