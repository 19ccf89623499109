// Package store owns the CSV backing files and the in-memory indexes
// derived from them. The files are the source of truth; every index here
// is a cache rebuilt by replaying its file at load time.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"masabot/internal/models"
)

// Backing file names, one logical file per entity.
const (
	FileTables       = "tables.csv"
	FileReservations = "reservations.csv"
	FileOccupancy    = "weekly_occupancy.csv"
	FileStocks       = "stocks.csv"
	FileMenus        = "weekly_menus.csv"
	FileRecords      = "records.csv"
	FileSoups        = "soups.csv"
	FileMains        = "mains.csv"
	FileSalads       = "salads.csv"
	FileDrinks       = "drinks.csv"
)

// Store holds every loaded entity behind one lock. Mutating engine
// operations are serialized by the engine; the lock here protects
// readers against concurrent Reload calls from the admin surface.
type Store struct {
	dir    string
	logger *zerolog.Logger

	mu sync.RWMutex

	tables map[int]models.Table

	// reservations: date -> time -> tableID -> full record.
	// Invariant: equal to replaying reservations.csv from scratch.
	reservations map[string]map[string]map[int]models.Reservation

	// external: date -> time -> tableID, from records.csv table rows.
	external map[string]map[string]map[int]bool

	// weekly: weekday -> time -> tableID, recurring blocks.
	weekly map[time.Weekday]map[string]map[int]bool

	stocks       map[string]int // item (lowercased) -> quantity, from stocks.csv
	recordStocks map[string]int // fallback quantities from records.csv

	pools     map[string][]string                  // category -> default rotation pool
	overrides map[time.Weekday]map[string][]string // weekday -> category -> items
}

// Open loads every backing file from dir, synthesizing documented
// defaults for files that do not exist yet.
func Open(dir string, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{dir: dir, logger: logger}
	for _, name := range []string{
		FileTables, FileSoups, FileMains, FileSalads, FileDrinks,
		FileStocks, FileReservations, FileOccupancy, FileMenus, FileRecords,
	} {
		if err := s.reloadLocked(name); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}

	logger.Info().Str("dir", dir).Int("tables", len(s.tables)).Msg("store initialized")
	return s, nil
}

// Reload re-reads a single backing file into memory. This is the
// cache-invalidation hook for external edits between requests.
func (s *Store) Reload(name string) error {
	if err := s.checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(name)
}

func (s *Store) reloadLocked(name string) error {
	switch name {
	case FileTables:
		return s.loadTables()
	case FileReservations:
		return s.loadReservations()
	case FileOccupancy:
		return s.loadOccupancy()
	case FileStocks:
		return s.loadStocks()
	case FileMenus:
		return s.loadMenus()
	case FileRecords:
		return s.loadRecords()
	case FileSoups, FileMains, FileSalads, FileDrinks:
		return s.loadPool(name)
	}
	return nil
}

// ReadRaw returns the raw bytes of a backing file for download.
func (s *Store) ReadRaw(name string) ([]byte, error) {
	if err := s.checkName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return os.ReadFile(s.Path(name))
}

// ReplaceRaw overwrites a backing file with uploaded content and
// rebuilds the in-memory index from it, under the write lock so no
// request observes the half-applied state.
func (s *Store) ReplaceRaw(name string, content []byte) error {
	if err := s.checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.Path(name), string(content)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return s.reloadLocked(name)
}

func (s *Store) checkName(name string) error {
	switch name {
	case FileTables, FileReservations, FileOccupancy, FileStocks,
		FileMenus, FileRecords, FileSoups, FileMains, FileSalads, FileDrinks:
		return nil
	default:
		return fmt.Errorf("unknown backing file %q", name)
	}
}

// Dir returns the data directory the store was opened on.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute path of a backing file.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// ensureFile writes content to the backing file only when it is absent,
// so first run synthesizes the documented default data set.
func (s *Store) ensureFile(name, content string) error {
	path := s.Path(name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	s.logger.Info().Str("file", name).Msg("backing file absent, writing defaults")
	return writeFileAtomic(path, content)
}

// warnRow logs a skipped malformed row.
func (s *Store) warnRow(file string, line int, err error) {
	s.logger.Warn().Str("file", file).Int("line", line).Err(err).Msg("skipping malformed row")
}
