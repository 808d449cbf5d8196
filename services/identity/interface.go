package identity

import (
	"context"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

// RegisterInput is the local sign-up payload. Every field is required.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult pairs a resolved account with a freshly issued bearer token.
type AuthResult struct {
	Account *models.Account `json:"user"`
	Token   string          `json:"token"`
}

// IdentityService maps authentication attempts to exactly one account.
type IdentityService interface {
	// Register creates a LOCAL account. A case-insensitive email clash fails
	// with models.ErrDuplicateEmail.
	Register(ctx context.Context, in RegisterInput) (*models.Account, error)
	// Login checks a LOCAL account's password and issues a token.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// ResolveExternal finds, links or creates the account behind a verified
	// provider assertion and issues a token for it.
	ResolveExternal(ctx context.Context, assertion models.ExternalAssertion) (*AuthResult, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}
