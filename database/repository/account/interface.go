package accountRepo

import (
	"context"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

// AccountRepository is the credential store. Lookups return (nil, nil) when
// nothing matches. Save inserts when ID is empty (assigning one) and updates
// otherwise; a clash on email or subject id yields models.ErrDuplicateEmail.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindBySubjectID(ctx context.Context, subjectID string) (*models.Account, error)
	FindAll(ctx context.Context) ([]models.Account, error)
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
}
