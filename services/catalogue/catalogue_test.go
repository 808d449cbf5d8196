package catalogue

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	offeringRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/offering"
	publisherRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

func newCatalogue(t *testing.T) (*DefaultCatalogueService, *models.Publisher) {
	t.Helper()
	publishers := publisherRepo.NewMemoryPublisherRepo()
	pub, err := publishers.Save(context.Background(), &models.Publisher{Name: "Salao", CNPJ: "19131243000197"})
	require.NoError(t, err)
	return &DefaultCatalogueService{
		Offerings:  offeringRepo.NewMemoryOfferingRepo(),
		Publishers: publishers,
	}, pub
}

func TestCreateValidates(t *testing.T) {
	s, pub := newCatalogue(t)
	ctx := context.Background()
	valid := models.OfferingInput{
		Name: "Corte", Category: "beleza", Description: "Corte", DurationMinutes: 30, Price: 45.5, PublisherID: pub.ID,
	}

	cases := map[string]func(in *models.OfferingInput){
		"blank name":        func(in *models.OfferingInput) { in.Name = " " },
		"zero duration":     func(in *models.OfferingInput) { in.DurationMinutes = 0 },
		"negative duration": func(in *models.OfferingInput) { in.DurationMinutes = -5 },
		"negative price":    func(in *models.OfferingInput) { in.Price = -0.01 },
		"huge price":        func(in *models.OfferingInput) { in.Price = 1e17 },
		"overflowing price": func(in *models.OfferingInput) { in.Price = 1e300 },
		"infinite price":    func(in *models.OfferingInput) { in.Price = math.Inf(1) },
		"NaN price":         func(in *models.OfferingInput) { in.Price = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := s.Create(ctx, in)
			require.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}

	missing := valid
	missing.PublisherID = "ghost"
	_, err := s.Create(ctx, missing)
	require.ErrorIs(t, err, models.ErrNotFound)

	created, err := s.Create(ctx, valid)
	require.NoError(t, err)
	require.Equal(t, int64(4550), created.PriceCents)
	require.False(t, created.Booked)
	require.Empty(t, created.ReservedBy)
}

func TestPriceToCents(t *testing.T) {
	for price, want := range map[float64]int64{0: 0, 19.99: 1999, 120: 12000, MaxPrice: MaxPrice * 100} {
		got, err := PriceToCents(price)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	for _, price := range []float64{-1, MaxPrice + 0.01, 1e19, 1e300, math.Inf(1), math.NaN()} {
		got, err := PriceToCents(price)
		require.ErrorIs(t, err, models.ErrInvalidInput, "price %v", price)
		require.Zero(t, got)
	}
}

func TestQueries(t *testing.T) {
	s, pub := newCatalogue(t)
	ctx := context.Background()
	in := models.OfferingInput{Name: "Massagem", Category: "saude", Description: "Relaxante", DurationMinutes: 60, Price: 120, PublisherID: pub.ID}
	created, err := s.Create(ctx, in)
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Massagem", got.Name)

	byName, err := s.FindByName(ctx, "Massagem")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	_, err = s.FindByName(ctx, "Nada")
	require.ErrorIs(t, err, models.ErrNotFound)

	byPub, err := s.ListByPublisher(ctx, pub.ID)
	require.NoError(t, err)
	require.Len(t, byPub, 1)

	byCat, err := s.ListByCategory(ctx, "beleza")
	require.NoError(t, err)
	require.Empty(t, byCat)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}
