package models

import "time"

// Table is a single bookable unit. Immutable after load.
type Table struct {
	ID       int    `json:"id"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

// Reservation is one committed booking. Records are never mutated in
// place; cancellation removes them from the ledger.
type Reservation struct {
	Date         string    `json:"date"` // YYYY-MM-DD
	Time         string    `json:"time"` // HH:MM
	TableID      int       `json:"table_id"`
	CustomerName string    `json:"customer_name"`
	PartySize    int       `json:"party_size"`
	Note         string    `json:"note"`
	OwnerID      string    `json:"owner_id"` // advisory, not a security boundary
	CreatedAt    time.Time `json:"created_at"`
}

// RecurringBlock permanently occupies a table at weekday+time every week.
type RecurringBlock struct {
	Weekday time.Weekday
	Time    string
	TableID int
}

// Reason codes returned by engine operations. Callers branch on these
// instead of on raised errors.
type Reason string

const (
	ReasonOK                 Reason = "OK"
	ReasonOutOfRange         Reason = "OUT_OF_RANGE"
	ReasonClosedDay          Reason = "CLOSED_DAY"
	ReasonOutsideHours       Reason = "OUTSIDE_HOURS"
	ReasonAlreadyBooked      Reason = "ALREADY_BOOKED"
	ReasonNotFound           Reason = "NOT_FOUND"
	ReasonNotOwner           Reason = "NOT_OWNER"
	ReasonInvalidInput       Reason = "INVALID_INPUT"
	ReasonPersistenceFailure Reason = "PERSISTENCE_FAILURE"
)

// AvailabilityResult is the outcome of a free-table query.
type AvailabilityResult struct {
	OK      bool    `json:"ok"`
	Tables  []Table `json:"tables,omitempty"`
	Reason  Reason  `json:"reason"`
	Message string  `json:"message"`
}

// ReserveResult is the outcome of a booking attempt.
type ReserveResult struct {
	OK          bool         `json:"ok"`
	Reservation *Reservation `json:"reservation,omitempty"`
	Reason      Reason       `json:"reason"`
	Message     string       `json:"message"`
}

// CancelResult is the outcome of a cancellation attempt.
type CancelResult struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Result is a generic outcome for inventory mutations.
type Result struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Offering is the composed daily menu, keyed by category in
// deterministic order: soup, main, salad, drink.
type Offering struct {
	OK         bool                `json:"ok"`
	Date       string              `json:"date"`
	Weekday    time.Weekday        `json:"weekday"`
	Categories map[string][]string `json:"categories,omitempty"`
	Reason     Reason              `json:"reason"`
	Message    string              `json:"message"`
}

// Offering category names, in display order.
const (
	CategorySoup  = "soup"
	CategoryMain  = "main"
	CategorySalad = "salad"
	CategoryDrink = "drink"
)

// Categories lists the offering categories in display order.
var Categories = []string{CategorySoup, CategoryMain, CategorySalad, CategoryDrink}

// UserState holds a chat user's dialog position and accumulated
// answers between messages.
type UserState struct {
	UserID int64                  `json:"user_id"`
	Step   string                 `json:"step"`
	Data   map[string]interface{} `json:"data"`
}
