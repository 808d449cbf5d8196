package publisherRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

type MemoryPublisherRepo struct {
	mu     sync.RWMutex
	byID   map[string]models.Publisher
	byCNPJ map[string]string
}

var _ PublisherRepository = (*MemoryPublisherRepo)(nil)

func NewMemoryPublisherRepo() *MemoryPublisherRepo {
	return &MemoryPublisherRepo{
		byID:   make(map[string]models.Publisher),
		byCNPJ: make(map[string]string),
	}
}

func (r *MemoryPublisherRepo) FindByID(_ context.Context, id string) (*models.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryPublisherRepo) FindByCNPJ(ctx context.Context, cnpj string) (*models.Publisher, error) {
	r.mu.RLock()
	id, ok := r.byCNPJ[cnpj]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryPublisherRepo) FindAll(_ context.Context) ([]models.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Publisher, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPublisherRepo) Save(_ context.Context, publisher *models.Publisher) (*models.Publisher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *publisher
	now := time.Now()
	saved.UpdatedAt = now

	if saved.ID == "" {
		if _, taken := r.byCNPJ[saved.CNPJ]; taken {
			return nil, models.ErrDuplicateCNPJ
		}
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
	} else {
		prev, ok := r.byID[saved.ID]
		if !ok {
			return nil, fmt.Errorf("publisher %s: %w", saved.ID, models.ErrNotFound)
		}
		if owner, taken := r.byCNPJ[saved.CNPJ]; taken && owner != saved.ID {
			return nil, models.ErrDuplicateCNPJ
		}
		delete(r.byCNPJ, prev.CNPJ)
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = prev.CreatedAt
		}
	}

	r.byID[saved.ID] = saved
	r.byCNPJ[saved.CNPJ] = saved.ID
	out := saved
	return &out, nil
}
