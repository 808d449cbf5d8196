package offeringRepo

import (
	"context"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

// OfferingRepository stores service offerings. FindByID and FindByName return
// (nil, nil) when nothing matches.
type OfferingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Offering, error)
	Save(ctx context.Context, offering *models.Offering) (*models.Offering, error)
	FindOpen(ctx context.Context) ([]models.Offering, error)
	DeleteByID(ctx context.Context, id string) error

	FindByPublisher(ctx context.Context, publisherID string) ([]models.Offering, error)
	FindByCategory(ctx context.Context, category string) ([]models.Offering, error)
	FindByName(ctx context.Context, name string) (*models.Offering, error)
	FindByReserver(ctx context.Context, accountID string) ([]models.Offering, error)

	// MarkBooked flips booked from false to true and records the reserving
	// account in one atomic step. It fails with models.ErrAlreadyBooked when
	// the offering is already booked and models.ErrNotFound when it is absent.
	MarkBooked(ctx context.Context, id, accountID string) (*models.Offering, error)
}
