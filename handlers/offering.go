package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/middleware"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/catalogue"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/identity"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/reservation"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// OfferingHandler serves /servicos.
type OfferingHandler struct {
	Catalogue    catalogue.CatalogueService
	Reservations reservation.ReservationService
	Identity     identity.IdentityService
	Logger       *zap.Logger
}

func NewOfferingHandler(catalogueSvc catalogue.CatalogueService, reservations reservation.ReservationService, identitySvc identity.IdentityService, logger *zap.Logger) *OfferingHandler {
	return &OfferingHandler{Catalogue: catalogueSvc, Reservations: reservations, Identity: identitySvc, Logger: logger}
}

// CreateHandler handles POST /servicos/cadastrar.
func (h *OfferingHandler) CreateHandler(c *gin.Context) {
	var req models.OfferingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	offering, err := h.Catalogue.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, "Failed to create service", err)
		return
	}
	c.JSON(http.StatusCreated, offering)
}

// ListOpenHandler handles GET /servicos; booked offerings are hidden.
func (h *OfferingHandler) ListOpenHandler(c *gin.Context) {
	offerings, err := h.Reservations.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, "Failed to list services", err)
		return
	}
	c.JSON(http.StatusOK, offerings)
}

func (h *OfferingHandler) GetHandler(c *gin.Context) {
	offering, err := h.Catalogue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, "Service not found", err)
		return
	}
	c.JSON(http.StatusOK, offering)
}

func (h *OfferingHandler) ListByPublisherHandler(c *gin.Context) {
	offerings, err := h.Catalogue.ListByPublisher(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, "Failed to list services", err)
		return
	}
	c.JSON(http.StatusOK, offerings)
}

func (h *OfferingHandler) ListByCategoryHandler(c *gin.Context) {
	offerings, err := h.Catalogue.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, h.Logger, "Failed to list services", err)
		return
	}
	c.JSON(http.StatusOK, offerings)
}

func (h *OfferingHandler) GetByNameHandler(c *gin.Context) {
	offering, err := h.Catalogue.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.Logger, "Service not found", err)
		return
	}
	c.JSON(http.StatusOK, offering)
}

func (h *OfferingHandler) DeleteHandler(c *gin.Context) {
	if err := h.Catalogue.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Logger, "Failed to delete service", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReserveHandler handles POST /servicos/:id/reservar[?userId=]. The caller can
// only book for its own account.
func (h *OfferingHandler) ReserveHandler(c *gin.Context) {
	ctx := c.Request.Context()
	email, _ := middleware.PrincipalEmail(c)
	caller, err := h.Identity.AccountByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated", "no account for token subject")
		return
	}
	if err != nil {
		respondError(c, h.Logger, "Failed to load account", err)
		return
	}

	accountID := c.Query("userId")
	if accountID == "" {
		accountID = caller.ID
	}
	if accountID != caller.ID {
		h.Logger.Warn("Reservation for another account refused",
			zap.String("caller", caller.ID), zap.String("target", accountID))
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "cannot reserve on behalf of another user")
		return
	}

	offering, err := h.Reservations.Reserve(ctx, c.Param("id"), accountID)
	if err != nil {
		respondError(c, h.Logger, "Reservation failed", err)
		return
	}
	c.JSON(http.StatusOK, offering)
}
