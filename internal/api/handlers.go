package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"masabot/internal/audit"
	"masabot/internal/metrics"
	"masabot/internal/models"
)

// handleStats reports aggregate counts.
// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reservations, err := s.store.AllReservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read ledger failed")
		return
	}
	perDate := map[string]int{}
	for _, res := range reservations {
		perDate[res.Date]++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tables":            len(s.store.Tables()),
		"reservations":      len(reservations),
		"reservations_date": perDate,
		"stocks":            s.store.Stocks(),
	})
}

// handleReservations lists reservations, optionally for one date.
// GET /api/reservations?date=YYYY-MM-DD
func (s *Server) handleReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	var (
		list []models.Reservation
		err  error
	)
	if date == "" {
		list, err = s.store.AllReservations()
	} else {
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		list, err = s.engine.ReservationsOn(date)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read ledger failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": list})
}

type cancelRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	TableID int    `json:"table_id"`
}

// handleCancelReservation force-cancels a booking from the back office.
// POST /api/reservation/cancel
func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation_cancel")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req cancelRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Empty requester skips the ownership check; the back office may
	// cancel anything.
	res := s.engine.Cancel(req.Date, req.Time, req.TableID, "")
	writeJSON(w, statusForReason(res.Reason), res)
}

// handleAvailability runs a free-table query.
// GET /api/availability?date=YYYY-MM-DD&time=HH:MM&party=N
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	party := 1
	if raw := q.Get("party"); raw != "" {
		var err error
		if party, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "party must be an integer")
			return
		}
	}
	res := s.engine.CheckAvailability(q.Get("date"), q.Get("time"), party)
	writeJSON(w, statusForReason(res.Reason), res)
}

type stockRequest struct {
	Item     string `json:"item"`
	Quantity *int   `json:"quantity,omitempty"`
	Amount   int    `json:"amount,omitempty"`
}

// handleStockUpdate sets an item's absolute quantity.
// POST /api/stock/update
func (s *Server) handleStockUpdate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stock_update")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	res := s.engine.SetInventory(req.Item, *req.Quantity)
	writeJSON(w, statusForReason(res.Reason), res)
}

// handleStockDecrement subtracts from an item's quantity, saturating
// at zero.
// POST /api/stock/decrement
func (s *Server) handleStockDecrement(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stock_decrement")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount := req.Amount
	if amount == 0 {
		amount = 1
	}
	res := s.engine.DecrementInventory(req.Item, amount)
	writeJSON(w, statusForReason(res.Reason), res)
}

// handleMenu returns one day's offering.
// GET /api/menu?date=YYYY-MM-DD
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("menu")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	offering := s.menu.DailyOffering(date)
	writeJSON(w, statusForReason(offering.Reason), offering)
}

// handleWeeklyMenu returns seven consecutive offerings.
// GET /api/weekly-menu?start=YYYY-MM-DD
func (s *Server) handleWeeklyMenu(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("weekly_menu")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := r.URL.Query().Get("start")
	if start == "" {
		start = time.Now().Format("2006-01-02")
	}
	day, err := time.Parse("2006-01-02", start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}

	week := make([]models.Offering, 0, 7)
	for i := 0; i < 7; i++ {
		week = append(week, s.menu.DailyOffering(day.AddDate(0, 0, i).Format("2006-01-02")))
	}
	writeJSON(w, http.StatusOK, map[string]any{"start": start, "days": week})
}

// handleCSV downloads or replaces a backing file.
// GET  /api/csv?file=stocks.csv
// POST /api/csv?file=stocks.csv  (body is the new file content)
func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("csv")
	name := r.URL.Query().Get("file")
	if name == "" {
		writeError(w, http.StatusBadRequest, "file parameter is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		raw, err := s.store.ReadRaw(name)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+name)
		_, _ = w.Write(raw)
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body failed")
			return
		}
		if err := s.store.ReplaceRaw(name, body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Info().Str("file", name).Int("bytes", len(body)).Msg("backing file replaced via api")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "file": name})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleExport streams the xlsx workbook.
// GET /api/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+audit.Filename(time.Now()))
	if err := s.exporter.Export(w); err != nil {
		s.logger.Error().Err(err).Msg("xlsx export failed")
	}
}

// statusForReason maps engine reasons onto HTTP status codes.
func statusForReason(reason models.Reason) int {
	switch reason {
	case models.ReasonOK:
		return http.StatusOK
	case models.ReasonNotFound:
		return http.StatusNotFound
	case models.ReasonNotOwner:
		return http.StatusForbidden
	case models.ReasonAlreadyBooked:
		return http.StatusConflict
	case models.ReasonPersistenceFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
