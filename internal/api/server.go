// Package api serves the back-office HTTP surface: reservation
// administration, inventory edits, raw CSV up/download and the xlsx
// export.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"masabot/internal/audit"
	"masabot/internal/engine"
	"masabot/internal/menu"
	"masabot/internal/store"
)

type Server struct {
	engine   *engine.Engine
	menu     *menu.Generator
	store    *store.Store
	exporter *audit.Exporter
	logger   *zerolog.Logger
	apiKey   string
	srv      *http.Server
}

func NewServer(eng *engine.Engine, gen *menu.Generator, st *store.Store, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{
		engine:   eng,
		menu:     gen,
		store:    st,
		exporter: audit.NewExporter(st),
		logger:   logger,
		apiKey:   apiKey,
	}
}

// Handler builds the routed, authenticated handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/reservations", s.handleReservations)
	mux.HandleFunc("/api/reservation/cancel", s.handleCancelReservation)
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/stock/update", s.handleStockUpdate)
	mux.HandleFunc("/api/stock/decrement", s.handleStockDecrement)
	mux.HandleFunc("/api/menu", s.handleMenu)
	mux.HandleFunc("/api/weekly-menu", s.handleWeeklyMenu)
	mux.HandleFunc("/api/csv", s.handleCSV)
	mux.HandleFunc("/api/export", s.handleExport)
	return s.requireAPIKey(mux)
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctxShutdown)
	}()
	s.logger.Info().Int("port", port).Msg("admin api listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// requireAPIKey rejects requests without the configured x-api-key
// header. An empty configured key disables the check, for local use.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
