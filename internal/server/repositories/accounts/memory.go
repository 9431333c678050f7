package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It is used when no
// database DSN is configured and in tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if a.Nickname == account.Nickname || a.Email == account.Email {
			return nil, common.ErrAlreadyExists
		}
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if _, ok := r.byID[account.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	account.CreatedAt = time.Now().UTC()
	r.byID[account.ID] = *account

	return account, nil
}

func (r *MemoryRepository) FindByIdentifier(_ context.Context, value string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.Nickname == value || a.Email == value {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[account.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for id, other := range r.byID {
		if id != account.ID && (other.Nickname == account.Nickname || other.Email == account.Email) {
			return nil, common.ErrAlreadyExists
		}
	}

	a.Nickname = account.Nickname
	a.Email = account.Email
	r.byID[a.ID] = a
	return &a, nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	r.byID[id] = a
	return nil
}

// Delete removes an account. Tokens issued for it stay cryptographically
// valid until they expire.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
