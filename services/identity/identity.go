package identity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	accountRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/account"
	"github.com/S204-Inatel-2025-2/AgendaFacil/metrics"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// PlaceholderName replaces a blank display name on provider assertions.
const PlaceholderName = "Usuário"

// DefaultIdentityService is the production IdentityService.
type DefaultIdentityService struct {
	Repo    accountRepo.AccountRepository
	Tokens  *utils.TokenCodec
	Locker  utils.Locker
	Metrics metrics.Recorder
	Logger  *zap.Logger

	// HashCost defaults to bcrypt.DefaultCost; tests lower it.
	HashCost int
}

var _ IdentityService = (*DefaultIdentityService)(nil)

func emailLockKey(email string) string     { return "account:email:" + email }
func subjectLockKey(subject string) string { return "account:subject:" + subject }

func (s *DefaultIdentityService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *DefaultIdentityService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultIdentityService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: name, email, phone and password are required", models.ErrInvalidInput)
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", models.ErrInvalidInput, MaxPasswordBytes)
	}

	unlock, err := s.Locker.Lock(ctx, emailLockKey(email))
	if err != nil {
		return nil, fmt.Errorf("failed to lock email %s: %w", email, err)
	}
	defer unlock()

	existing, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrDuplicateEmail, email)
	}

	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The store's unique email index still has the final say if another
	// process got here first.
	account, err := s.Repo.Save(ctx, &models.Account{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Origin:       models.OriginLocal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger().Info("Account registered", zap.String("accountID", account.ID), zap.String("email", email))
	return account, nil
}

func (s *DefaultIdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.Repo.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		s.recorder().RecordLogin(metrics.MethodPassword, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to fetch account for login: %w", err)
	}
	if account == nil || account.Origin != models.OriginLocal || !account.HasPassword() {
		s.recorder().RecordLogin(metrics.MethodPassword, metrics.OutcomeRejected)
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.recorder().RecordLogin(metrics.MethodPassword, metrics.OutcomeRejected)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.issue(account.Email)
	if err != nil {
		s.recorder().RecordLogin(metrics.MethodPassword, metrics.OutcomeError)
		return nil, err
	}
	s.recorder().RecordLogin(metrics.MethodPassword, metrics.OutcomeSuccess)
	return &AuthResult{Account: account, Token: token}, nil
}

// ResolveExternal applies, in order: subject match, email link, create.
// The email (and subject, when present) lock is held across the whole
// read-modify-write so two logins for the same person cannot both create or
// both link.
func (s *DefaultIdentityService) ResolveExternal(ctx context.Context, assertion models.ExternalAssertion) (*AuthResult, error) {
	email := models.NormalizeEmail(assertion.Email)
	if email == "" {
		s.recorder().RecordLogin(metrics.MethodExternal, metrics.OutcomeRejected)
		return nil, models.ErrMissingEmail
	}
	name := strings.TrimSpace(assertion.Name)
	if name == "" {
		name = PlaceholderName
	}
	subject := strings.TrimSpace(assertion.SubjectID)

	account, err := s.resolveLocked(ctx, email, name, subject)
	if err != nil {
		s.recorder().RecordLogin(metrics.MethodExternal, metrics.OutcomeError)
		return nil, err
	}

	token, err := s.issue(account.Email)
	if err != nil {
		s.recorder().RecordLogin(metrics.MethodExternal, metrics.OutcomeError)
		return nil, err
	}
	s.recorder().RecordLogin(metrics.MethodExternal, metrics.OutcomeSuccess)
	return &AuthResult{Account: account, Token: token}, nil
}

func (s *DefaultIdentityService) resolveLocked(ctx context.Context, email, name, subject string) (*models.Account, error) {
	keys := []string{emailLockKey(email)}
	if subject != "" {
		keys = append([]string{subjectLockKey(subject)}, keys...)
	}
	for _, key := range keys {
		unlock, err := s.Locker.Lock(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", key, err)
		}
		defer unlock()
	}

	// 1. Provider identity is authoritative once linked.
	if subject != "" {
		linked, err := s.Repo.FindBySubjectID(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch account by subject: %w", err)
		}
		if linked != nil {
			linked.Name = name
			return s.save(ctx, linked)
		}
	}

	// 2. Link an existing account that owns the email.
	existing, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account by email: %w", err)
	}
	if existing != nil {
		if subject == "" {
			// Without a subject there is nothing to link; refresh the name only.
			existing.Name = name
			return s.save(ctx, existing)
		}
		wasLocal := existing.Origin == models.OriginLocal
		existing.LinkExternal(subject, name)
		if wasLocal {
			s.logger().Info("Local account linked to external provider",
				zap.String("accountID", existing.ID), zap.String("email", email))
		}
		return s.save(ctx, existing)
	}

	// 3. First sighting of this person.
	if subject == "" {
		subject = email
	}
	created, err := s.Repo.Save(ctx, &models.Account{
		Name:      name,
		Email:     email,
		Origin:    models.OriginExternal,
		SubjectID: subject,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create external account: %w", err)
	}
	s.logger().Info("External account created", zap.String("accountID", created.ID), zap.String("email", email))
	return created, nil
}

func (s *DefaultIdentityService) save(ctx context.Context, account *models.Account) (*models.Account, error) {
	saved, err := s.Repo.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", account.ID, err)
	}
	return saved, nil
}

func (s *DefaultIdentityService) issue(email string) (string, error) {
	token, err := s.Tokens.Issue(email)
	if err != nil {
		return "", fmt.Errorf("failed to generate auth token: %w", err)
	}
	s.recorder().RecordTokenIssued()
	return token, nil
}

func (s *DefaultIdentityService) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.Repo.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", email, models.ErrNotFound)
	}
	return account, nil
}

func (s *DefaultIdentityService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

