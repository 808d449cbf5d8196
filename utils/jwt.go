package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenCodec issues and verifies HS256 bearer tokens whose subject is the
// account email. It holds no per-session state; the key is fixed at
// construction.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the issue-time clock.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec copies secret so later mutation of the caller's slice has no effect.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: empty signing key")
	}
	if ttl <= 0 {
		return nil, errors.New("token codec: ttl must be positive")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	c := &TokenCodec{secret: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL reports the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for email valid for the configured TTL.
func (c *TokenCodec) Issue(email string) (string, error) {
	issuedAt := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate reports whether token carries a good signature and has not expired.
func (c *TokenCodec) Validate(token string) bool {
	_, err := c.parse(token)
	return err == nil
}

// Subject returns the email a valid token was issued for.
func (c *TokenCodec) Subject(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *TokenCodec) parse(tokenString string) (claims *jwt.RegisteredClaims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("%w: %v", ErrInvalidToken, r)
		}
	}()

	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	claims = &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	// RegisteredClaims.Valid treats a missing exp as non-expiring.
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
