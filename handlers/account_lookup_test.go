package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/middleware"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/identity"
)

// lookupIdentity answers AccountByEmail with a fixed error.
type lookupIdentity struct {
	identity.IdentityService
	err error
}

func (l lookupIdentity) AccountByEmail(context.Context, string) (*models.Account, error) {
	return nil, l.err
}

// stubReservations fails the test if the handler gets as far as booking.
type stubReservations struct{ t *testing.T }

func (s stubReservations) Reserve(context.Context, string, string) (*models.Offering, error) {
	s.t.Fatal("Reserve must not be reached")
	return nil, nil
}

func (s stubReservations) ListOpen(context.Context) ([]models.Offering, error) { return nil, nil }

func serveAs(email string, handler gin.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	c.Params = gin.Params{{Key: "id", Value: "svc-1"}}
	if email != "" {
		c.Set(middleware.PrincipalKey, email)
	}
	handler(c)
	return w
}

func TestReserveHandlerAccountLookupErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"unknown account": {fmt.Errorf("account a@x.com: %w", models.ErrNotFound), http.StatusUnauthorized},
		"store failure":   {errors.New("failed to fetch account: connection reset"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewOfferingHandler(nil, stubReservations{t}, lookupIdentity{err: tc.err}, zap.NewNop())
			w := serveAs("a@x.com", h.ReserveHandler, http.MethodPost, "/servicos/svc-1/reservar")
			require.Equal(t, tc.want, w.Code, w.Body.String())
			require.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestStatusHandlerAccountLookupErrors(t *testing.T) {
	h := NewAuthHandler(lookupIdentity{err: errors.New("mongo down")}, nil, zap.NewNop())
	w := serveAs("a@x.com", h.StatusHandler, http.MethodGet, "/oauth2/status")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	h = NewAuthHandler(lookupIdentity{err: models.ErrNotFound}, nil, zap.NewNop())
	w = serveAs("a@x.com", h.StatusHandler, http.MethodGet, "/oauth2/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	w = serveAs("", h.StatusHandler, http.MethodGet, "/oauth2/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}
