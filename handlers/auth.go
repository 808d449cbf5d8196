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
)

// AuthHandler serves local registration, login and account views.
type AuthHandler struct {
	Identity  identity.IdentityService
	Catalogue catalogue.CatalogueService
	Logger    *zap.Logger
}

func NewAuthHandler(identitySvc identity.IdentityService, catalogueSvc catalogue.CatalogueService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Identity: identitySvc, Catalogue: catalogueSvc, Logger: logger}
}

// RegisterHandler handles POST /register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req identity.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.Identity.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, "Registration failed", err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// LoginHandler handles POST /login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, "Login failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListUsersHandler handles GET /users.
func (h *AuthHandler) ListUsersHandler(c *gin.Context) {
	accounts, err := h.Identity.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// MeHandler handles GET /me: the caller's account and the offerings it booked.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	email, _ := middleware.PrincipalEmail(c)
	account, err := h.Identity.AccountByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.Logger, "Failed to load account", err)
		return
	}
	reservations, err := h.Catalogue.ListReservedBy(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, h.Logger, "Failed to load reservations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account, "reservations": reservations})
}

// StatusHandler handles GET /oauth2/status. Anonymous callers get 200 with
// authenticated=false rather than a 401.
func (h *AuthHandler) StatusHandler(c *gin.Context) {
	anonymous := gin.H{"authenticated": false}
	email, ok := middleware.PrincipalEmail(c)
	if !ok {
		c.JSON(http.StatusOK, anonymous)
		return
	}
	account, err := h.Identity.AccountByEmail(c.Request.Context(), email)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, anonymous)
		return
	}
	if err != nil {
		respondError(c, h.Logger, "Failed to load account", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"provider":      account.Origin,
	})
}
