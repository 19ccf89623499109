// Package session persists per-user dialog state. The primary backend
// is Redis; an in-memory map serves as fallback so the bot keeps
// working through Redis outages.
package session

import (
	"context"
	"time"

	"masabot/internal/models"
)

// StateRepository is the contract the bot's dialog layer depends on.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}
