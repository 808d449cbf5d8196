package accountRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

// MemoryAccountRepo is a process-local AccountRepository with the same
// uniqueness guarantees as the Mongo indexes.
type MemoryAccountRepo struct {
	mu        sync.RWMutex
	byID      map[string]models.Account
	byEmail   map[string]string
	bySubject map[string]string
}

var _ AccountRepository = (*MemoryAccountRepo)(nil)

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		byID:      make(map[string]models.Account),
		byEmail:   make(map[string]string),
		bySubject: make(map[string]string),
	}
}

func (r *MemoryAccountRepo) lookup(id string, ok bool) *models.Account {
	if !ok {
		return nil
	}
	a := r.byID[id]
	return &a
}

func (r *MemoryAccountRepo) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return r.lookup(id, ok), nil
}

func (r *MemoryAccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[models.NormalizeEmail(email)]
	return r.lookup(id, ok), nil
}

func (r *MemoryAccountRepo) FindBySubjectID(_ context.Context, subjectID string) (*models.Account, error) {
	if subjectID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySubject[subjectID]
	return r.lookup(id, ok), nil
}

func (r *MemoryAccountRepo) FindAll(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accounts := make([]models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *MemoryAccountRepo) Save(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *account
	saved.Email = models.NormalizeEmail(saved.Email)
	now := time.Now()
	saved.UpdatedAt = now

	var previous *models.Account
	if saved.ID == "" {
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
	} else {
		prev, ok := r.byID[saved.ID]
		if !ok {
			return nil, fmt.Errorf("account %s: %w", saved.ID, models.ErrNotFound)
		}
		previous = &prev
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = prev.CreatedAt
		}
	}

	if owner, ok := r.byEmail[saved.Email]; ok && owner != saved.ID {
		return nil, fmt.Errorf("%w: %s", models.ErrDuplicateEmail, saved.Email)
	}
	if saved.SubjectID != "" {
		if owner, ok := r.bySubject[saved.SubjectID]; ok && owner != saved.ID {
			return nil, fmt.Errorf("%w: subject %s", models.ErrDuplicateEmail, saved.SubjectID)
		}
	}

	if previous != nil {
		delete(r.byEmail, previous.Email)
		if previous.SubjectID != "" {
			delete(r.bySubject, previous.SubjectID)
		}
	}
	r.byID[saved.ID] = saved
	r.byEmail[saved.Email] = saved.ID
	if saved.SubjectID != "" {
		r.bySubject[saved.SubjectID] = saved.ID
	}

	out := saved
	return &out, nil
}
