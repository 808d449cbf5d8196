package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	accountRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/account"
	offeringRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/offering"
	publisherRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/handlers"
	"github.com/S204-Inatel-2025-2/AgendaFacil/metrics"
	"github.com/S204-Inatel-2025-2/AgendaFacil/middleware"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/catalogue"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/identity"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/reservation"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

type fakeGoogle struct{}

func (fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (fakeGoogle) Exchange(_ context.Context, code string) (*models.ExternalAssertion, error) {
	if code != "good" {
		return nil, context.Canceled
	}
	return &models.ExternalAssertion{Email: "b@x.com", Name: "Bia", SubjectID: "g-1"}, nil
}

func (fakeGoogle) VerifyIDToken(_ context.Context, idToken string) (*models.ExternalAssertion, error) {
	return &models.ExternalAssertion{Email: idToken + "@x.com", Name: "", SubjectID: "g-" + idToken}, nil
}

type stubCNPJ struct{}

func (stubCNPJ) Lookup(_ context.Context, cnpj string) (*publisher.CNPJRecord, error) {
	return &publisher.CNPJRecord{LegalName: "SALAO LTDA", TradeName: "Salao", Email: "s@x.com"}, nil
}

type app struct {
	router *gin.Engine
	codec  *utils.TokenCodec
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	codec, err := utils.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	locker := utils.NewKeyedMutex()
	accounts := accountRepo.NewMemoryAccountRepo()
	offerings := offeringRepo.NewMemoryOfferingRepo()
	publishers := publisherRepo.NewMemoryPublisherRepo()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	identitySvc := &identity.DefaultIdentityService{
		Repo: accounts, Tokens: codec, Locker: locker, Metrics: collector, Logger: logger, HashCost: bcrypt.MinCost,
	}
	catalogueSvc := &catalogue.DefaultCatalogueService{Offerings: offerings, Publishers: publishers, Logger: logger}
	engine := &reservation.Engine{Offerings: offerings, Accounts: accounts, Locker: locker, Metrics: collector, Logger: logger}
	publisherSvc := &publisher.DefaultPublisherService{Repo: publishers, CNPJ: stubCNPJ{}, Locker: locker, Logger: logger}

	hb := handlers.NewHandlerBundle(
		handlers.NewAuthHandler(identitySvc, catalogueSvc, logger),
		handlers.NewOAuthHandler(fakeGoogle{}, identitySvc, "http://localhost:5173/auth/callback", false, logger),
		handlers.NewOfferingHandler(catalogueSvc, engine, identitySvc, logger),
		handlers.NewPublisherHandler(publisherSvc, logger),
	)

	r := gin.New()
	RegisterRoutes(r, hb, Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		Tokens:         codec,
		Limiter:        middleware.NewRateLimiter(1000),
		Metrics:        collector,
		Gatherer:       reg,
		Health:         utils.NewHealthMonitor(nil),
		Logger:         logger,
	})
	return &app{router: r, codec: codec}
}

func (a *app) call(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type authResponse struct {
	Token string         `json:"token"`
	User  models.Account `json:"user"`
}

func (a *app) signUp(t *testing.T, email string) authResponse {
	t.Helper()
	w := a.call(t, http.MethodPost, "/register", "", map[string]string{
		"name": "Ana", "email": email, "phone": "35999990000", "password": "p1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.call(t, http.MethodPost, "/login", "", map[string]string{"email": email, "password": "p1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res
}

func (a *app) publishOffering(t *testing.T, token string) models.Offering {
	t.Helper()
	w := a.call(t, http.MethodPost, "/empresas/cadastrar", token, map[string]string{"cnpj": "19.131.243/0001-97"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pub models.Publisher
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	require.Equal(t, "Salao", pub.Name)

	w = a.call(t, http.MethodPost, "/servicos/cadastrar", token, map[string]any{
		"name": "Corte", "category": "beleza", "description": "Corte", "durationMinutes": 30, "price": 45, "publisherId": pub.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var o models.Offering
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	return o
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t)
	res := a.signUp(t, "a@x.com")
	require.Equal(t, "a@x.com", res.User.Email)
	require.Equal(t, models.OriginLocal, res.User.Origin)
	require.NotContains(t, a.call(t, http.MethodGet, "/users", "", nil).Body.String(), "password")

	w := a.call(t, http.MethodPost, "/register", "", map[string]string{
		"name": "Ana", "email": "a@x.com", "phone": "1", "password": "p2",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(t, http.MethodPost, "/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.call(t, http.MethodGet, "/me", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"email":"a@x.com"`)

	w = a.call(t, http.MethodGet, "/oauth2/status", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"provider":"LOCAL"`)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodGet, "/servicos", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodGet, "/servicos", "garbage", nil).Code)
	require.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodGet, "/empresas", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodGet, "/me", "", nil).Code)
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/users", "", nil).Code)
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/health", "", nil).Code)
}

func TestAuthStatusAnonymous(t *testing.T) {
	a := newApp(t)
	for _, token := range []string{"", "garbage"} {
		w := a.call(t, http.MethodGet, "/oauth2/status", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	}

	orphan, err := a.codec.Issue("nobody@x.com")
	require.NoError(t, err)
	w := a.call(t, http.MethodGet, "/oauth2/status", orphan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestReservationFlow(t *testing.T) {
	a := newApp(t)
	five := a.signUp(t, "five@x.com")
	seven := a.signUp(t, "seven@x.com")
	offering := a.publishOffering(t, five.Token)
	require.Equal(t, int64(4500), offering.PriceCents)

	// Booking for someone else is refused.
	w := a.call(t, http.MethodPost, "/servicos/"+offering.ID+"/reservar?userId="+seven.User.ID, five.Token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = a.call(t, http.MethodPost, "/servicos/"+offering.ID+"/reservar?userId="+five.User.ID, five.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var booked models.Offering
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	require.True(t, booked.Booked)
	require.Equal(t, five.User.ID, booked.ReservedBy)

	w = a.call(t, http.MethodPost, "/servicos/"+offering.ID+"/reservar", seven.Token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = a.call(t, http.MethodPost, "/servicos/missing/reservar", seven.Token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = a.call(t, http.MethodGet, "/servicos", seven.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = a.call(t, http.MethodGet, "/me", five.Token, nil)
	require.Contains(t, w.Body.String(), offering.ID)

	w = a.call(t, http.MethodGet, "/metrics", "", nil)
	require.Contains(t, w.Body.String(), `agendafacil_reservations_total{outcome="already_booked"} 1`)
}

func TestOfferingQueries(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "a@x.com")
	offering := a.publishOffering(t, user.Token)

	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/servicos/"+offering.ID, user.Token, nil).Code)
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/servicos/nome/Corte", user.Token, nil).Code)
	require.Equal(t, http.StatusNotFound, a.call(t, http.MethodGet, "/servicos/nome/Nada", user.Token, nil).Code)

	w := a.call(t, http.MethodGet, "/servicos/categoria/beleza", user.Token, nil)
	require.Contains(t, w.Body.String(), offering.ID)
	w = a.call(t, http.MethodGet, "/servicos/empresa/"+offering.PublisherID, user.Token, nil)
	require.Contains(t, w.Body.String(), offering.ID)

	w = a.call(t, http.MethodPost, "/servicos/cadastrar", user.Token, map[string]any{
		"name": "X", "category": "y", "description": "z", "durationMinutes": 30, "price": 10, "publisherId": "ghost",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusNoContent, a.call(t, http.MethodDelete, "/servicos/"+offering.ID, user.Token, nil).Code)
	require.Equal(t, http.StatusNotFound, a.call(t, http.MethodDelete, "/servicos/"+offering.ID, user.Token, nil).Code)
}

func TestPublisherRoutes(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "a@x.com")

	w := a.call(t, http.MethodGet, "/empresas/cnpj/19131243000197", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"legalName":"SALAO LTDA"`)

	w = a.call(t, http.MethodGet, "/empresas/cnpj/123", user.Token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	offering := a.publishOffering(t, user.Token)
	w = a.call(t, http.MethodGet, "/empresas/"+offering.PublisherID, user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.call(t, http.MethodGet, "/empresas", user.Token, nil)
	require.Contains(t, w.Body.String(), offering.PublisherID)
}

func TestGoogleCodeFlow(t *testing.T) {
	a := newApp(t)

	w := a.call(t, http.MethodGet, "/oauth2/authorization/google", "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	callback := func(stateParam, code string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google?state="+stateParam+"&code="+code, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusUnauthorized, callback("forged", "good").Code)
	require.Equal(t, http.StatusUnauthorized, callback(state, "bad").Code)

	w = callback(state, "good")
	require.Equal(t, http.StatusFound, w.Code)
	target, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(target.String(), "http://localhost:5173/auth/callback"))
	token := target.Query().Get("token")
	require.True(t, a.codec.Validate(token))
	subject, err := a.codec.Subject(token)
	require.NoError(t, err)
	require.Equal(t, "b@x.com", subject)

	w = a.call(t, http.MethodGet, "/oauth2/status", token, nil)
	require.Contains(t, w.Body.String(), `"provider":"EXTERNAL_PROVIDER"`)
}

func TestGoogleIDTokenLinksLocalAccount(t *testing.T) {
	a := newApp(t)
	local := a.signUp(t, "c@x.com")

	w := a.call(t, http.MethodPost, "/auth/google", "", map[string]string{"idToken": "c"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, local.User.ID, res.User.ID)
	require.Equal(t, models.OriginExternal, res.User.Origin)
	require.Equal(t, identity.PlaceholderName, res.User.Name)

	w = a.call(t, http.MethodPost, "/login", "", map[string]string{"email": "c@x.com", "password": "p1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
