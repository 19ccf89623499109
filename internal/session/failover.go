package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"masabot/internal/models"
)

// recoveryInterval is how long the failover waits before probing a
// downed primary again.
const recoveryInterval = time.Minute

// FailoverStateRepository routes reads and writes to the primary
// backend and switches to the fallback when the primary errors. After
// recoveryInterval it retries the primary on the next call.
type FailoverStateRepository struct {
	primary  StateRepository
	fallback StateRepository
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{primary: primary, fallback: fallback, logger: logger}
}

// active picks the repository to use, allowing a recovery probe when
// the primary has been down long enough.
func (r *FailoverStateRepository) active() StateRepository {
	if !r.isDown.Load() {
		return r.primary
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) >= recoveryInterval {
		r.lastCheck = time.Now()
		return r.primary
	}
	return r.fallback
}

func (r *FailoverStateRepository) markDown(err error) {
	if r.isDown.CompareAndSwap(false, true) {
		r.logger.Warn().Err(err).Msg("primary state backend down, switching to fallback")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverStateRepository) markUp() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("primary state backend recovered")
	}
}

func (r *FailoverStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	repo := r.active()
	state, err := repo.GetState(ctx, userID)
	if repo == r.primary {
		if err != nil {
			r.markDown(err)
			return r.fallback.GetState(ctx, userID)
		}
		r.markUp()
	}
	return state, err
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	repo := r.active()
	err := repo.SetState(ctx, state)
	if repo == r.primary {
		if err != nil {
			r.markDown(err)
			return r.fallback.SetState(ctx, state)
		}
		r.markUp()
	}
	return err
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, userID int64) error {
	repo := r.active()
	err := repo.ClearState(ctx, userID)
	if repo == r.primary {
		if err != nil {
			r.markDown(err)
			return r.fallback.ClearState(ctx, userID)
		}
		r.markUp()
	}
	return err
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	repo := r.active()
	ok, err := repo.CheckRateLimit(ctx, userID, limit, window)
	if repo == r.primary {
		if err != nil {
			r.markDown(err)
			return r.fallback.CheckRateLimit(ctx, userID, limit, window)
		}
		r.markUp()
	}
	return ok, err
}
