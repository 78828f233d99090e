package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, params CreateParams) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(params.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		DisplayName:  params.DisplayName,
		IsAdmin:      params.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.byID[user.ID] = user
	r.byEmail[key] = user.ID

	clone := *user
	return &clone, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *r.byID[id]
	return &clone, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, userID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *user
	return &clone, nil
}

// marks an account disabled; used by tests and seed tooling
func (r *MemoryRepository) Disable(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if ok {
		user.IsDisabled = true
	}

	return ok
}
