package publisherRepo

import (
	"context"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

// PublisherRepository stores publishers. Lookups return (nil, nil) on a miss.
type PublisherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Publisher, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*models.Publisher, error)
	FindAll(ctx context.Context) ([]models.Publisher, error)
	Save(ctx context.Context, publisher *models.Publisher) (*models.Publisher, error)
}
