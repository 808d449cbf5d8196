package socialAuth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

const (
	googleCertsURL    = "https://www.googleapis.com/oauth2/v3/certs"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	keyCacheTTL       = time.Hour
)

var (
	ErrUnverifiedEmail = errors.New("provider email is not verified")
	ErrInvalidIDToken  = errors.New("invalid Google ID token")
)

// GoogleJWK represents a single JSON Web Key from Google's keys endpoint.
type GoogleJWK struct {
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// GoogleJWKResponse represents the response from Google's keys endpoint.
type GoogleJWKResponse struct {
	Keys []GoogleJWK `json:"keys"`
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleProvider turns Google sign-ins into models.ExternalAssertion values.
// Both the authorization-code flow and client-obtained ID tokens are
// supported.
type GoogleProvider struct {
	OAuth       *oauth2.Config
	CertsURL    string
	UserInfoURL string
	HTTP        *http.Client

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	keysExpires time.Time
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		CertsURL:    googleCertsURL,
		UserInfoURL: googleUserInfoURL,
		HTTP:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether client credentials were supplied.
func (g *GoogleProvider) Configured() bool {
	return g.OAuth.ClientID != "" && g.OAuth.ClientSecret != ""
}

// NewState returns an unguessable value for the OAuth state parameter.
func NewState() string {
	return uuid.NewString()
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleProvider) withClient(ctx context.Context) context.Context {
	if g.HTTP == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.HTTP)
}

// Exchange trades an authorization code for tokens and reads the userinfo
// endpoint.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*models.ExternalAssertion, error) {
	ctx = g.withClient(ctx)
	tok, err := g.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := g.OAuth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.EmailVerified != nil && !*info.EmailVerified {
		return nil, ErrUnverifiedEmail
	}
	return &models.ExternalAssertion{Email: info.Email, Name: info.Name, SubjectID: info.Sub}, nil
}

// publicKeys fetches and caches Google's signing keys for an hour.
func (g *GoogleProvider) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	g.mu.RLock()
	if time.Now().Before(g.keysExpires) && g.keys != nil {
		defer g.mu.RUnlock()
		return g.keys, nil
	}
	g.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.CertsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build certs request: %w", err)
	}
	client := g.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google certs: %w", err)
	}
	defer resp.Body.Close()

	var keyResp GoogleJWKResponse
	if err := json.NewDecoder(resp.Body).Decode(&keyResp); err != nil {
		return nil, fmt.Errorf("failed to decode Google keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(keyResp.Keys))
	for _, key := range keyResp.Keys {
		pubKey, err := convertJWKToPublicKey(key.N, key.E)
		if err != nil {
			return nil, fmt.Errorf("failed to convert JWK to public key: %w", err)
		}
		keys[key.Kid] = pubKey
	}

	g.mu.Lock()
	g.keys = keys
	g.keysExpires = time.Now().Add(keyCacheTTL)
	g.mu.Unlock()
	return keys, nil
}

// convertJWKToPublicKey converts base64url encoded modulus and exponent to rsa.PublicKey.
func convertJWKToPublicKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var exp int
	for _, b := range eb {
		exp = exp<<8 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: exp}, nil
}

// VerifyIDToken checks signature, audience, issuer and expiry of a Google ID
// token and returns the identity it asserts.
func (g *GoogleProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.ExternalAssertion, error) {
	keys, err := g.publicKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google public keys: %w", err)
	}

	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		pubKey, ok := keys[kid]
		if !ok {
			return nil, errors.New("no matching Google public key found")
		}
		return pubKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidIDToken)
	}
	if !claims.VerifyAudience(g.OAuth.ClientID, true) {
		return nil, fmt.Errorf("%w: audience", ErrInvalidIDToken)
	}
	if iss, _ := claims["iss"].(string); iss != "accounts.google.com" && iss != "https://accounts.google.com" {
		return nil, fmt.Errorf("%w: issuer", ErrInvalidIDToken)
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidIDToken)
	}
	if verified, present := claims["email_verified"].(bool); present && !verified {
		return nil, ErrUnverifiedEmail
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	sub, _ := claims["sub"].(string)
	return &models.ExternalAssertion{Email: strings.ToLower(email), Name: name, SubjectID: sub}, nil
}
