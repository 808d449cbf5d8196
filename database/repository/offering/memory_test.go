package offeringRepo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

func seed(t *testing.T, repo *MemoryOfferingRepo, name string) *models.Offering {
	t.Helper()
	o, err := repo.Save(context.Background(), &models.Offering{
		Name: name, Category: "beleza", Description: "d", DurationMinutes: 30, PublisherID: "pub-1",
	})
	require.NoError(t, err)
	return o
}

func TestMarkBookedIsCompareAndSet(t *testing.T) {
	repo := NewMemoryOfferingRepo()
	ctx := context.Background()
	o := seed(t, repo, "Corte")

	booked, err := repo.MarkBooked(ctx, o.ID, "acc-5")
	require.NoError(t, err)
	require.True(t, booked.Booked)
	require.Equal(t, "acc-5", booked.ReservedBy)

	_, err = repo.MarkBooked(ctx, o.ID, "acc-7")
	require.ErrorIs(t, err, models.ErrAlreadyBooked)

	again, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "acc-5", again.ReservedBy)

	_, err = repo.MarkBooked(ctx, "missing", "acc-5")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkBookedConcurrentSingleWinner(t *testing.T) {
	repo := NewMemoryOfferingRepo()
	o := seed(t, repo, "Massagem")

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.MarkBooked(context.Background(), o.ID, "acc"); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins)
}

func TestFindOpenExcludesBooked(t *testing.T) {
	repo := NewMemoryOfferingRepo()
	ctx := context.Background()
	a := seed(t, repo, "A")
	seed(t, repo, "B")

	_, err := repo.MarkBooked(ctx, a.ID, "acc-1")
	require.NoError(t, err)

	open, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "B", open[0].Name)

	mine, err := repo.FindByReserver(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, repo.DeleteByID(ctx, a.ID))
	require.ErrorIs(t, repo.DeleteByID(ctx, a.ID), models.ErrNotFound)
}
