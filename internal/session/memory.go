package session

import (
	"context"
	"sync"
	"time"

	"masabot/internal/models"
)

// MemoryStateRepository keeps dialog state in process memory. State is
// lost on restart, which is acceptable for a fallback: the user simply
// restarts the dialog.
type MemoryStateRepository struct {
	mu     sync.RWMutex
	states map[int64]*models.UserState
	hits   map[int64][]time.Time
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		states: make(map[int64]*models.UserState),
		hits:   make(map[int64][]time.Time),
	}
}

func (r *MemoryStateRepository) GetState(_ context.Context, userID int64) (*models.UserState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	copied := *state
	return &copied, nil
}

func (r *MemoryStateRepository) SetState(_ context.Context, state *models.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *state
	r.states[state.UserID] = &copied
	return nil
}

func (r *MemoryStateRepository) ClearState(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}

// CheckRateLimit reports whether the user is within limit messages per
// window. Allowed hits are recorded; denied attempts are not.
func (r *MemoryStateRepository) CheckRateLimit(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-window)
	kept := r.hits[userID][:0]
	for _, t := range r.hits[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= limit {
		r.hits[userID] = kept
		return false, nil
	}
	r.hits[userID] = append(kept, now)
	return true, nil
}
