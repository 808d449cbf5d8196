package accountRepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

func TestMemorySaveAssignsIDAndNormalisesEmail(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	saved, err := repo.Save(ctx, &models.Account{Name: "Ana", Email: "  Ana@X.com ", PasswordHash: "h", Origin: models.OriginLocal})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, "ana@x.com", saved.Email)

	found, err := repo.FindByEmail(ctx, "ANA@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, saved.ID, found.ID)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMemoryEnforcesUniqueness(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	_, err := repo.Save(ctx, &models.Account{Email: "a@x.com", Origin: models.OriginExternal, SubjectID: "g-1"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &models.Account{Email: "A@x.com", Origin: models.OriginLocal, PasswordHash: "h"})
	require.ErrorIs(t, err, models.ErrDuplicateEmail)

	_, err = repo.Save(ctx, &models.Account{Email: "b@x.com", Origin: models.OriginExternal, SubjectID: "g-1"})
	require.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestMemoryUpdateReindexes(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	saved, err := repo.Save(ctx, &models.Account{Email: "a@x.com", Origin: models.OriginLocal, PasswordHash: "h"})
	require.NoError(t, err)

	saved.LinkExternal("g-9", "Ana")
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, saved.CreatedAt, updated.CreatedAt)

	bySubject, err := repo.FindBySubjectID(ctx, "g-9")
	require.NoError(t, err)
	require.Equal(t, saved.ID, bySubject.ID)
	require.True(t, bySubject.Consistent())

	_, err = repo.Save(ctx, &models.Account{ID: "ghost", Email: "g@x.com"})
	require.ErrorIs(t, err, models.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	saved, err := repo.Save(ctx, &models.Account{Name: "Ana", Email: "a@x.com", Origin: models.OriginLocal, PasswordHash: "h"})
	require.NoError(t, err)
	saved.Name = "mutated"

	again, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana", again.Name)
}
