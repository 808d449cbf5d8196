package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/identity"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/socialAuth"
)

const oauthStateCookie = "oauth_state"

// GoogleAuthenticator is implemented by *socialAuth.GoogleProvider.
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.ExternalAssertion, error)
	VerifyIDToken(ctx context.Context, idToken string) (*models.ExternalAssertion, error)
}

// OAuthHandler drives sign-in through Google.
type OAuthHandler struct {
	Google          GoogleAuthenticator
	Identity        identity.IdentityService
	SuccessRedirect string
	SecureCookies   bool
	Logger          *zap.Logger
}

func NewOAuthHandler(google GoogleAuthenticator, identitySvc identity.IdentityService, successRedirect string, secure bool, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		Google:          google,
		Identity:        identitySvc,
		SuccessRedirect: successRedirect,
		SecureCookies:   secure,
		Logger:          logger,
	}
}

// AuthorizeHandler handles GET /oauth2/authorization/google.
func (h *OAuthHandler) AuthorizeHandler(c *gin.Context) {
	state := socialAuth.NewState()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.SecureCookies, true)
	c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// CallbackHandler handles GET /login/oauth2/code/google and sends the browser
// back to the frontend with the issued token.
func (h *OAuthHandler) CallbackHandler(c *gin.Context) {
	fail := func(reason string, err error) {
		h.Logger.Warn("OAuth2 login failed", zap.String("reason", reason), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Autenticação OAuth2 falhou: " + reason})
	}

	if errParam := c.Query("error"); errParam != "" {
		fail(errParam, nil)
		return
	}
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		fail("invalid state", err)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.SecureCookies, true)

	assertion, err := h.Google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		fail("code exchange failed", err)
		return
	}
	res, err := h.Identity.ResolveExternal(c.Request.Context(), *assertion)
	if err != nil {
		fail("could not resolve account", err)
		return
	}

	target, err := url.Parse(h.SuccessRedirect)
	if err != nil {
		fail("bad redirect target", err)
		return
	}
	q := target.Query()
	q.Set("token", res.Token)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// IDTokenHandler handles POST /auth/google for clients that already hold a
// Google ID token.
func (h *OAuthHandler) IDTokenHandler(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	assertion, err := h.Google.VerifyIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, h.Logger, "Google sign-in failed", err)
		return
	}
	res, err := h.Identity.ResolveExternal(c.Request.Context(), *assertion)
	if err != nil {
		respondError(c, h.Logger, "Google sign-in failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
