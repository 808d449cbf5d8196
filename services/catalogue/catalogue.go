// Package catalogue publishes and queries offerings. Booking goes through the
// reservation engine, never through here.
package catalogue

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	offeringRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/offering"
	publisherRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

type CatalogueService interface {
	Create(ctx context.Context, in models.OfferingInput) (*models.Offering, error)
	Get(ctx context.Context, id string) (*models.Offering, error)
	FindByName(ctx context.Context, name string) (*models.Offering, error)
	ListByPublisher(ctx context.Context, publisherID string) ([]models.Offering, error)
	ListByCategory(ctx context.Context, category string) ([]models.Offering, error)
	ListReservedBy(ctx context.Context, accountID string) ([]models.Offering, error)
	Delete(ctx context.Context, id string) error
}

type DefaultCatalogueService struct {
	Offerings  offeringRepo.OfferingRepository
	Publishers publisherRepo.PublisherRepository
	Logger     *zap.Logger
}

var _ CatalogueService = (*DefaultCatalogueService)(nil)

// MaxPrice is the largest accepted price, in currency units.
const MaxPrice = 1_000_000_000

// PriceToCents converts a decimal price to integer cents, rounding half away
// from zero. Negative, non-finite and above-MaxPrice values are rejected.
func PriceToCents(price float64) (int64, error) {
	if math.IsNaN(price) || price < 0 || price > MaxPrice {
		return 0, fmt.Errorf("%w: price must be between 0 and %d", models.ErrInvalidInput, MaxPrice)
	}
	return int64(math.Round(price * 100)), nil
}

func (s *DefaultCatalogueService) Create(ctx context.Context, in models.OfferingInput) (*models.Offering, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	description := strings.TrimSpace(in.Description)
	switch {
	case name == "" || category == "" || description == "":
		return nil, fmt.Errorf("%w: name, category and description are required", models.ErrInvalidInput)
	case in.DurationMinutes <= 0:
		return nil, fmt.Errorf("%w: duration must be positive", models.ErrInvalidInput)
	}
	cents, err := PriceToCents(in.Price)
	if err != nil {
		return nil, err
	}

	publisher, err := s.Publishers.FindByID(ctx, in.PublisherID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publisher: %w", err)
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher %s: %w", in.PublisherID, models.ErrNotFound)
	}

	offering, err := s.Offerings.Save(ctx, &models.Offering{
		Name:            name,
		Category:        category,
		Description:     description,
		DurationMinutes: in.DurationMinutes,
		PriceCents:      cents,
		PublisherID:     publisher.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("Offering published", zap.String("offeringID", offering.ID), zap.String("publisherID", publisher.ID))
	}
	return offering, nil
}

func (s *DefaultCatalogueService) Get(ctx context.Context, id string) (*models.Offering, error) {
	o, err := s.Offerings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offering: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("offering %s: %w", id, models.ErrNotFound)
	}
	return o, nil
}

func (s *DefaultCatalogueService) FindByName(ctx context.Context, name string) (*models.Offering, error) {
	o, err := s.Offerings.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offering: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("offering named %q: %w", name, models.ErrNotFound)
	}
	return o, nil
}

func (s *DefaultCatalogueService) ListByPublisher(ctx context.Context, publisherID string) ([]models.Offering, error) {
	return s.Offerings.FindByPublisher(ctx, publisherID)
}

func (s *DefaultCatalogueService) ListByCategory(ctx context.Context, category string) ([]models.Offering, error) {
	return s.Offerings.FindByCategory(ctx, category)
}

func (s *DefaultCatalogueService) ListReservedBy(ctx context.Context, accountID string) ([]models.Offering, error) {
	return s.Offerings.FindByReserver(ctx, accountID)
}

func (s *DefaultCatalogueService) Delete(ctx context.Context, id string) error {
	return s.Offerings.DeleteByID(ctx, id)
}
