package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"masabot/internal/models"
)

// BookingEngine is the slice of the reservation engine the bot needs.
type BookingEngine interface {
	CheckAvailability(date, clock string, partySize int) models.AvailabilityResult
	Reserve(date, clock string, tableID int, customerName string, partySize int, note, ownerID string) models.ReserveResult
	Cancel(date, clock string, tableID int, requesterID string) models.CancelResult
	ListForOwner(ownerID string) ([]models.Reservation, error)
	ReservationsOn(date string) ([]models.Reservation, error)
}

// OfferingSource composes the menu for a date.
type OfferingSource interface {
	DailyOffering(date string) models.Offering
}

// StateManager persists dialog state between messages.
type StateManager interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// TelegramSender is the outbound half of the Telegram API, kept small
// so tests can substitute a recorder.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
