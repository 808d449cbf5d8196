package publisherRepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

func TestSaveRejectsDuplicateCNPJ(t *testing.T) {
	repo := NewMemoryPublisherRepo()
	ctx := context.Background()

	first, err := repo.Save(ctx, &models.Publisher{Name: "Salao", CNPJ: "19131243000197"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = repo.Save(ctx, &models.Publisher{Name: "Outro", CNPJ: "19131243000197"})
	require.ErrorIs(t, err, models.ErrDuplicateCNPJ)

	found, err := repo.FindByCNPJ(ctx, "19131243000197")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSaveUpdatesAndReindexes(t *testing.T) {
	repo := NewMemoryPublisherRepo()
	ctx := context.Background()

	p, err := repo.Save(ctx, &models.Publisher{Name: "Salao", CNPJ: "11111111000111"})
	require.NoError(t, err)

	p.CNPJ = "22222222000122"
	_, err = repo.Save(ctx, p)
	require.NoError(t, err)

	gone, err := repo.FindByCNPJ(ctx, "11111111000111")
	require.NoError(t, err)
	require.Nil(t, gone)

	_, err = repo.Save(ctx, &models.Publisher{ID: "nope", CNPJ: "3"})
	require.ErrorIs(t, err, models.ErrNotFound)
}
