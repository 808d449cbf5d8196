package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// PrincipalKey is the gin context key holding the authenticated email.
const PrincipalKey = "principalEmail"

type principalCtxKey struct{}

// TokenVerifier is the part of utils.TokenCodec the gate needs.
type TokenVerifier interface {
	Validate(token string) bool
	Subject(token string) (string, error)
}

// Paths that skip token inspection entirely.
var (
	publicPrefixes = []string{
		"/auth/",
		"/login",
		"/oauth2/authorization",
		"/register",
		"/error",
		"/health",
		"/metrics",
	}
	publicExact = map[string]bool{"/users": true}
)

func isPublicPath(path string) bool {
	if publicExact[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionGate attaches the bearer token's subject as the request principal.
// It never rejects: a missing, malformed or expired token just leaves the
// request unauthenticated, and RequirePrincipal decides downstream.
func SessionGate(tokens TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isPublicPath(c.Request.URL.Path) {
			attachPrincipal(c, tokens, logger)
		}
		c.Next()
	}
}

func attachPrincipal(c *gin.Context, tokens TokenVerifier, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Session gate recovered from panic",
				zap.String("path", c.Request.URL.Path), zap.Any("panic", r))
		}
	}()

	header := c.GetHeader("Authorization")
	if header == "" {
		return
	}
	token, ok := bearerToken(header)
	if !ok {
		logger.Debug("Ignoring non-bearer Authorization header", zap.String("path", c.Request.URL.Path))
		return
	}
	if !tokens.Validate(token) {
		logger.Debug("Ignoring invalid bearer token", zap.String("path", c.Request.URL.Path))
		return
	}
	email, err := tokens.Subject(token)
	if err != nil {
		logger.Warn("Validated token has no usable subject", zap.Error(err))
		return
	}

	c.Set(PrincipalKey, email)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), email))
}

func bearerToken(header string) (string, bool) {
	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}

// WithPrincipal stores email on ctx for code below the HTTP layer.
func WithPrincipal(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, email)
}

// PrincipalFromContext returns the email attached by the gate, if any.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(principalCtxKey{}).(string)
	return email, ok && email != ""
}

// PrincipalEmail returns the authenticated email for this request.
func PrincipalEmail(c *gin.Context) (string, bool) {
	email := c.GetString(PrincipalKey)
	return email, email != ""
}

// RequirePrincipal rejects requests the gate left unauthenticated.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalEmail(c); !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication required", "missing or invalid bearer token")
			return
		}
		c.Next()
	}
}
