package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/socialAuth"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// statusFor maps domain errors to HTTP statuses. Anything unrecognised is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrMissingEmail):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, socialAuth.ErrInvalidIDToken),
		errors.Is(err, socialAuth.ErrUnverifiedEmail):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyBooked),
		errors.Is(err, models.ErrDuplicateCNPJ):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError logs err and answers with the mapped status. Internal details
// are not echoed back on 500s.
func respondError(c *gin.Context, logger *zap.Logger, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.JSONError(c, status, message, "internal error")
		return
	}
	logger.Debug(message, zap.String("path", c.Request.URL.Path), zap.Error(err))
	utils.JSONError(c, status, message, err.Error())
}

func bindError(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
}
