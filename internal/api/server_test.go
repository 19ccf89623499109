package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masabot/internal/config"
	"masabot/internal/engine"
	"masabot/internal/events"
	"masabot/internal/menu"
	"masabot/internal/models"
	"masabot/internal/store"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st, err := store.Open(t.TempDir(), &logger)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Booking.WindowStart = "2025-10-24"
	cfg.Booking.WindowEnd = "2025-12-31"
	cfg.Hours = map[string]config.HoursConfig{
		"friday":   {Open: "11:00", Close: "24:00"},
		"saturday": {Open: "11:00", Close: "24:00"},
	}

	eng := engine.New(st, cfg, events.NewEventBus(), &logger)
	gen := menu.NewGenerator(st, time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC))
	return NewServer(eng, gen, st, "test-key", &logger), eng
}

func doRequest(t *testing.T, s *Server, method, target, body string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if withKey {
		req.Header.Set("x-api-key", "test-key")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyRequired(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/stats", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/stats", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStats(t *testing.T) {
	s, eng := newTestServer(t)
	require.True(t, eng.Reserve("2025-10-25", "19:00", 1, "Ali", 2, "", "42").OK)

	rec := doRequest(t, s, http.MethodGet, "/api/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tables       int            `json:"tables"`
		Reservations int            `json:"reservations"`
		PerDate      map[string]int `json:"reservations_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 20, body.Tables)
	assert.Equal(t, 1, body.Reservations)
	assert.Equal(t, 1, body.PerDate["2025-10-25"])
}

func TestAvailabilityEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/availability?date=2025-10-25&time=19:00&party=2", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.AvailabilityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Len(t, res.Tables, 20)

	rec = doRequest(t, s, http.MethodGet, "/api/availability?date=2026-05-01&time=19:00&party=2", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/availability?date=2025-10-25&time=19:00&party=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationsEndpoint(t *testing.T) {
	s, eng := newTestServer(t)
	require.True(t, eng.Reserve("2025-10-25", "19:00", 1, "Ali", 2, "", "42").OK)
	require.True(t, eng.Reserve("2025-10-31", "20:00", 2, "Ayşe", 3, "", "7").OK)

	rec := doRequest(t, s, http.MethodGet, "/api/reservations?date=2025-10-25", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reservations, 1)
	assert.Equal(t, "Ali", body.Reservations[0].CustomerName)

	rec = doRequest(t, s, http.MethodGet, "/api/reservations", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Reservations, 2)

	rec = doRequest(t, s, http.MethodGet, "/api/reservations?date=bad", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	s, eng := newTestServer(t)
	require.True(t, eng.Reserve("2025-10-25", "19:00", 1, "Ali", 2, "", "42").OK)

	rec := doRequest(t, s, http.MethodPost, "/api/reservation/cancel",
		`{"date":"2025-10-25","time":"19:00","table_id":1}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/reservation/cancel",
		`{"date":"2025-10-25","time":"19:00","table_id":1}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/reservation/cancel", `{"bogus":1}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockEndpoints(t *testing.T) {
	s, eng := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/stock/update", `{"item":"Ayran","quantity":9}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	qty, _ := eng.Store().StockFor("ayran")
	assert.Equal(t, 9, qty)

	rec = doRequest(t, s, http.MethodPost, "/api/stock/decrement", `{"item":"Ayran","amount":4}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	qty, _ = eng.Store().StockFor("ayran")
	assert.Equal(t, 5, qty)

	rec = doRequest(t, s, http.MethodPost, "/api/stock/update", `{"item":"Ayran"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMenuEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/menu?date=2025-10-24", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var offering models.Offering
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offering))
	assert.True(t, offering.OK)
	assert.Len(t, offering.Categories[models.CategorySoup], 4)

	rec = doRequest(t, s, http.MethodGet, "/api/weekly-menu?start=2025-10-24", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var week struct {
		Days []models.Offering `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &week))
	require.Len(t, week.Days, 7)
	assert.NotEqual(t,
		week.Days[0].Categories[models.CategorySoup],
		week.Days[1].Categories[models.CategorySoup])
}

func TestCSVEndpoints(t *testing.T) {
	s, eng := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/csv?file=stocks.csv", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ayran,50")

	rec = doRequest(t, s, http.MethodPost, "/api/csv?file=stocks.csv", "item,quantity\nKola,2\n", true)
	require.Equal(t, http.StatusOK, rec.Code)
	qty, tracked := eng.Store().StockFor("kola")
	assert.True(t, tracked)
	assert.Equal(t, 2, qty)

	rec = doRequest(t, s, http.MethodGet, "/api/csv?file=secrets.csv", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/csv", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	s, eng := newTestServer(t)
	require.True(t, eng.Reserve("2025-10-25", "19:00", 1, "Ali", 2, "", "42").OK)

	rec := doRequest(t, s, http.MethodGet, "/api/export", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	// xlsx is a zip archive.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
