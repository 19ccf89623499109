package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"masabot/internal/models"
)

const tablesHeader = "id,capacity,location\n"

// defaultTables is the synthesized first-run catalog: 20 four-seat
// tables in the main room.
func defaultTables() string {
	var b strings.Builder
	b.WriteString(tablesHeader)
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&b, "%d,4,Salon\n", i)
	}
	return b.String()
}

func (s *Store) loadTables() error {
	if err := s.ensureFile(FileTables, defaultTables()); err != nil {
		return err
	}

	rows, lines, err := readRows(s.Path(FileTables))
	if err != nil {
		return err
	}

	tables := make(map[int]models.Table, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			s.warnRow(FileTables, lines[i], fmt.Errorf("want 3 fields, got %d", len(row)))
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || id <= 0 {
			s.warnRow(FileTables, lines[i], fmt.Errorf("bad table id %q", row[0]))
			continue
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || capacity <= 0 {
			s.warnRow(FileTables, lines[i], fmt.Errorf("bad capacity %q", row[1]))
			continue
		}
		tables[id] = models.Table{ID: id, Capacity: capacity, Location: strings.TrimSpace(row[2])}
	}

	s.tables = tables
	return nil
}

// Tables returns the catalog ordered by id.
func (s *Store) Tables() []models.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Table looks up a single catalog entry.
func (s *Store) Table(id int) (models.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}
