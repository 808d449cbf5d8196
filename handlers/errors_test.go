package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/socialAuth"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", models.ErrDuplicateEmail), http.StatusBadRequest},
		{models.ErrMissingEmail, http.StatusBadRequest},
		{models.ErrInvalidInput, http.StatusBadRequest},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: audience", socialAuth.ErrInvalidIDToken), http.StatusUnauthorized},
		{fmt.Errorf("offering 1: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("offering 1: %w", models.ErrAlreadyBooked), http.StatusConflict},
		{models.ErrDuplicateCNPJ, http.StatusConflict},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
