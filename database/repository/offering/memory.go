package offeringRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

// MemoryOfferingRepo is a process-local OfferingRepository.
type MemoryOfferingRepo struct {
	mu        sync.RWMutex
	offerings map[string]models.Offering
}

var _ OfferingRepository = (*MemoryOfferingRepo)(nil)

func NewMemoryOfferingRepo() *MemoryOfferingRepo {
	return &MemoryOfferingRepo{offerings: make(map[string]models.Offering)}
}

func (r *MemoryOfferingRepo) FindByID(_ context.Context, id string) (*models.Offering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.offerings[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *MemoryOfferingRepo) FindByName(_ context.Context, name string) (*models.Offering, error) {
	matches := r.filter(func(o models.Offering) bool { return o.Name == name })
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *MemoryOfferingRepo) filter(keep func(models.Offering) bool) []models.Offering {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Offering{}
	for _, o := range r.offerings {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *MemoryOfferingRepo) FindOpen(_ context.Context) ([]models.Offering, error) {
	return r.filter(func(o models.Offering) bool { return !o.Booked }), nil
}

func (r *MemoryOfferingRepo) FindByPublisher(_ context.Context, publisherID string) ([]models.Offering, error) {
	return r.filter(func(o models.Offering) bool { return o.PublisherID == publisherID }), nil
}

func (r *MemoryOfferingRepo) FindByCategory(_ context.Context, category string) ([]models.Offering, error) {
	return r.filter(func(o models.Offering) bool { return o.Category == category }), nil
}

func (r *MemoryOfferingRepo) FindByReserver(_ context.Context, accountID string) ([]models.Offering, error) {
	return r.filter(func(o models.Offering) bool { return o.ReservedBy == accountID }), nil
}

func (r *MemoryOfferingRepo) Save(_ context.Context, offering *models.Offering) (*models.Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *offering
	now := time.Now()
	saved.UpdatedAt = now
	if saved.ID == "" {
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
	} else if prev, ok := r.offerings[saved.ID]; !ok {
		return nil, fmt.Errorf("offering %s: %w", saved.ID, models.ErrNotFound)
	} else if saved.CreatedAt.IsZero() {
		saved.CreatedAt = prev.CreatedAt
	}
	r.offerings[saved.ID] = saved
	out := saved
	return &out, nil
}

func (r *MemoryOfferingRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offerings[id]; !ok {
		return fmt.Errorf("offering %s: %w", id, models.ErrNotFound)
	}
	delete(r.offerings, id)
	return nil
}

func (r *MemoryOfferingRepo) MarkBooked(_ context.Context, id, accountID string) (*models.Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.offerings[id]
	if !ok {
		return nil, fmt.Errorf("offering %s: %w", id, models.ErrNotFound)
	}
	if o.Booked {
		return nil, fmt.Errorf("offering %s: %w", id, models.ErrAlreadyBooked)
	}
	now := time.Now()
	o.Booked = true
	o.ReservedBy = accountID
	o.BookedAt = now
	o.UpdatedAt = now
	r.offerings[id] = o
	out := o
	return &out, nil
}
