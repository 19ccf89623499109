// Package engine implements the reservation and availability engine:
// the only component that decides whether a table is free and commits
// bookings against the ledger.
package engine

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"masabot/internal/config"
	"masabot/internal/events"
	"masabot/internal/metrics"
	"masabot/internal/models"
	"masabot/internal/store"
)

var timeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Engine answers availability queries and commits reservations.
//
// Single-writer contract: mutating operations (Reserve, Cancel,
// SetInventory, DecrementInventory) take the write lock; read-only
// operations may run concurrently under the read lock. There is no
// cross-process locking — only one engine process may own the backing
// files while running.
type Engine struct {
	store  *store.Store
	bus    *events.EventBus
	logger *zerolog.Logger

	mu  sync.RWMutex
	cfg *config.Config
}

func New(st *store.Store, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *Engine {
	return &Engine{store: st, cfg: cfg, bus: bus, logger: logger}
}

// SetConfig swaps the active config (used by the config watch loop).
func (e *Engine) SetConfig(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

// Store exposes the backing store for the admin surface (reload hooks,
// raw file access).
func (e *Engine) Store() *store.Store { return e.store }

// parseDate validates and parses a YYYY-MM-DD date.
func parseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}

// checkWindow verifies the date lies within the inclusive booking
// window.
func (e *Engine) checkWindow(d time.Time) bool {
	start, end := e.cfg.BookingWindow()
	return !d.Before(start) && !d.After(end)
}

func (e *Engine) windowMessage() string {
	return fmt.Sprintf("reservations are only accepted between %s and %s",
		e.cfg.Booking.WindowStart, e.cfg.Booking.WindowEnd)
}

// CheckAvailability returns the tables free for (date, time, party
// size). No side effects.
func (e *Engine) CheckAvailability(date, timeStr string, partySize int) models.AvailabilityResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	res := e.checkAvailability(date, timeStr, partySize)
	metrics.IncAvailabilityCheck(string(res.Reason))
	return res
}

func (e *Engine) checkAvailability(date, timeStr string, partySize int) models.AvailabilityResult {
	if partySize <= 0 {
		return models.AvailabilityResult{Reason: models.ReasonInvalidInput, Message: "party size must be positive"}
	}
	if !timeRe.MatchString(timeStr) {
		return models.AvailabilityResult{Reason: models.ReasonInvalidInput, Message: "time must be HH:MM"}
	}
	d, err := parseDate(date)
	if err != nil {
		return models.AvailabilityResult{Reason: models.ReasonInvalidInput, Message: "date must be YYYY-MM-DD"}
	}
	if !e.checkWindow(d) {
		return models.AvailabilityResult{Reason: models.ReasonOutOfRange, Message: e.windowMessage()}
	}

	hours, open := e.cfg.HoursFor(d.Weekday())
	if !open {
		return models.AvailabilityResult{Reason: models.ReasonClosedDay, Message: "closed on this day"}
	}

	// Minutes since midnight; a close of "24:00" means 1440 so the last
	// slot before midnight is bookable.
	requested, _ := config.ParseClock(timeStr)
	openMin, _ := config.ParseClock(hours.Open)
	closeMin, _ := config.ParseClock(hours.Close)
	if requested < openMin || requested >= closeMin {
		return models.AvailabilityResult{
			Reason:  models.ReasonOutsideHours,
			Message: fmt.Sprintf("open %s-%s on this day", hours.Open, hours.Close),
		}
	}

	occupied := e.store.OccupiedAt(date, timeStr, d.Weekday())

	var free []models.Table
	for _, t := range e.store.Tables() {
		if t.Capacity >= partySize && !occupied[t.ID] {
			free = append(free, t)
		}
	}

	if len(free) == 0 {
		return models.AvailabilityResult{Reason: models.ReasonOK, Message: "no free tables at this time"}
	}
	return models.AvailabilityResult{
		OK:      true,
		Tables:  free,
		Reason:  models.ReasonOK,
		Message: fmt.Sprintf("%d tables available", len(free)),
	}
}

// Reserve commits a booking. The in-memory index is authoritative for
// the process lifetime: a failed ledger append is logged as a
// persistence failure but the booking still succeeds (a restart loses
// unflushed writes).
func (e *Engine) Reserve(date, timeStr string, tableID int, customerName string, partySize int, note, ownerID string) models.ReserveResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !timeRe.MatchString(timeStr) {
		return models.ReserveResult{Reason: models.ReasonInvalidInput, Message: "time must be HH:MM"}
	}
	d, err := parseDate(date)
	if err != nil {
		return models.ReserveResult{Reason: models.ReasonInvalidInput, Message: "date must be YYYY-MM-DD"}
	}
	if !e.checkWindow(d) {
		return models.ReserveResult{Reason: models.ReasonOutOfRange, Message: e.windowMessage()}
	}

	table, ok := e.store.Table(tableID)
	if !ok {
		return models.ReserveResult{Reason: models.ReasonInvalidInput, Message: fmt.Sprintf("unknown table %d", tableID)}
	}
	if partySize <= 0 || partySize > table.Capacity {
		return models.ReserveResult{
			Reason:  models.ReasonInvalidInput,
			Message: fmt.Sprintf("party size must be 1-%d for table %d", table.Capacity, tableID),
		}
	}

	if e.store.BookedAt(date, timeStr)[tableID] {
		return models.ReserveResult{Reason: models.ReasonAlreadyBooked, Message: "table is already reserved at this time"}
	}

	r := models.Reservation{
		Date:         date,
		Time:         timeStr,
		TableID:      tableID,
		CustomerName: customerName,
		PartySize:    partySize,
		Note:         note,
		OwnerID:      ownerID,
		CreatedAt:    time.Now(),
	}

	if err := e.store.AppendReservation(r); err != nil {
		metrics.IncPersistenceFailure()
		e.logger.Error().Err(err).
			Str("date", date).Str("time", timeStr).Int("table", tableID).
			Msg("ledger append failed; booking kept in memory")
	}

	metrics.IncReservationCreated()
	_ = e.bus.PublishJSON(events.ReservationCreated, r)
	e.logger.Info().
		Str("date", date).Str("time", timeStr).Int("table", tableID).
		Int("party", partySize).Msg("reservation created")

	return models.ReserveResult{OK: true, Reservation: &r, Reason: models.ReasonOK, Message: "reservation created"}
}

// Cancel removes a booking. When requesterID is non-empty and differs
// from the stored non-empty owner id, the cancellation is rejected;
// this is advisory authorization, not a security boundary.
func (e *Engine) Cancel(date, timeStr string, tableID int, requesterID string) models.CancelResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.Reservation(date, timeStr, tableID)
	if !ok {
		return models.CancelResult{Reason: models.ReasonNotFound, Message: "no such reservation"}
	}

	if requesterID != "" && r.OwnerID != "" && r.OwnerID != requesterID {
		return models.CancelResult{Reason: models.ReasonNotOwner, Message: "reservation belongs to another user"}
	}

	if err := e.store.RemoveReservation(date, timeStr, tableID); err != nil {
		metrics.IncPersistenceFailure()
		e.logger.Error().Err(err).
			Str("date", date).Str("time", timeStr).Int("table", tableID).
			Msg("ledger rewrite failed; cancellation kept in memory")
	}

	metrics.IncReservationCancelled()
	_ = e.bus.PublishJSON(events.ReservationCancelled, r)
	e.logger.Info().
		Str("date", date).Str("time", timeStr).Int("table", tableID).
		Msg("reservation cancelled")

	return models.CancelResult{OK: true, Reason: models.ReasonOK, Message: "reservation cancelled"}
}

// ListForOwner scans the persisted ledger for an owner's reservations.
func (e *Engine) ListForOwner(ownerID string) ([]models.Reservation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.ReservationsForOwner(ownerID)
}

// ReservationsOn lists every reservation for one date, in ledger order.
func (e *Engine) ReservationsOn(date string) ([]models.Reservation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	all, err := e.store.AllReservations()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

// SetInventory sets an item's remaining quantity.
func (e *Engine) SetInventory(item string, qty int) models.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setInventory(item, qty)
}

// DecrementInventory lowers an item's quantity by amount, floored at
// zero. amount below 1 counts as 1.
func (e *Engine) DecrementInventory(item string, amount int) models.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount < 1 {
		amount = 1
	}
	current, _ := e.store.StockFor(item)
	next := current - amount
	if next < 0 {
		next = 0
	}
	return e.setInventory(item, next)
}

func (e *Engine) setInventory(item string, qty int) models.Result {
	if item == "" || qty < 0 {
		return models.Result{Reason: models.ReasonInvalidInput, Message: "item and non-negative quantity required"}
	}
	if err := e.store.SetStock(item, qty); err != nil {
		metrics.IncPersistenceFailure()
		e.logger.Error().Err(err).Str("item", item).Msg("stock write failed; quantity kept in memory")
	}
	_ = e.bus.PublishJSON(events.InventoryUpdated, map[string]interface{}{"item": item, "quantity": qty})
	return models.Result{OK: true, Reason: models.ReasonOK, Message: "stock updated"}
}
