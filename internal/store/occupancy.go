package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	occupancyHeader = "weekday,time,resource_id,status\n"
	recordsHeader   = "type,date,time,resource_id,status,item,quantity\n"
)

func isOccupiedStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "occupied", "dolu":
		return true
	}
	return false
}

// loadOccupancy reads the recurring weekly blocks. Weekday is numeric,
// 0=Sunday..6=Saturday. Only occupied rows are material.
func (s *Store) loadOccupancy() error {
	if err := s.ensureFile(FileOccupancy, occupancyHeader); err != nil {
		return err
	}

	rows, lines, err := readRows(s.Path(FileOccupancy))
	if err != nil {
		return err
	}

	weekly := make(map[time.Weekday]map[string]map[int]bool)
	for i, row := range rows {
		if len(row) < 4 {
			s.warnRow(FileOccupancy, lines[i], fmt.Errorf("want 4 fields, got %d", len(row)))
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || day < 0 || day > 6 {
			s.warnRow(FileOccupancy, lines[i], fmt.Errorf("bad weekday %q", row[0]))
			continue
		}
		tableID, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			s.warnRow(FileOccupancy, lines[i], fmt.Errorf("bad resource id %q", row[2]))
			continue
		}
		if !isOccupiedStatus(row[3]) {
			continue
		}

		weekday := time.Weekday(day)
		timeStr := strings.TrimSpace(row[1])
		if weekly[weekday] == nil {
			weekly[weekday] = make(map[string]map[int]bool)
		}
		if weekly[weekday][timeStr] == nil {
			weekly[weekday][timeStr] = make(map[int]bool)
		}
		weekly[weekday][timeStr][tableID] = true
	}

	s.weekly = weekly
	return nil
}

// loadRecords reads the externally maintained records file. Rows of
// type=table mark a concrete (date, time, resource) occupied; rows of
// type=stock carry fallback inventory quantities.
func (s *Store) loadRecords() error {
	if err := s.ensureFile(FileRecords, recordsHeader); err != nil {
		return err
	}

	rows, lines, err := readRows(s.Path(FileRecords))
	if err != nil {
		return err
	}

	external := make(map[string]map[string]map[int]bool)
	recordStocks := make(map[string]int)
	for i, row := range rows {
		if len(row) < 1 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(row[0])) {
		case "table":
			if len(row) < 5 {
				s.warnRow(FileRecords, lines[i], fmt.Errorf("table row: want 5 fields, got %d", len(row)))
				continue
			}
			tableID, err := strconv.Atoi(strings.TrimSpace(row[3]))
			if err != nil {
				s.warnRow(FileRecords, lines[i], fmt.Errorf("bad resource id %q", row[3]))
				continue
			}
			if !isOccupiedStatus(row[4]) {
				continue
			}
			date := strings.TrimSpace(row[1])
			timeStr := strings.TrimSpace(row[2])
			if date == "" || timeStr == "" {
				s.warnRow(FileRecords, lines[i], fmt.Errorf("empty date or time"))
				continue
			}
			if external[date] == nil {
				external[date] = make(map[string]map[int]bool)
			}
			if external[date][timeStr] == nil {
				external[date][timeStr] = make(map[int]bool)
			}
			external[date][timeStr][tableID] = true
		case "stock":
			if len(row) < 7 {
				s.warnRow(FileRecords, lines[i], fmt.Errorf("stock row: want 7 fields, got %d", len(row)))
				continue
			}
			item := strings.ToLower(strings.TrimSpace(row[5]))
			if item == "" {
				continue
			}
			qty, err := strconv.Atoi(strings.TrimSpace(row[6]))
			if err != nil || qty < 0 {
				s.warnRow(FileRecords, lines[i], fmt.Errorf("bad quantity %q", row[6]))
				continue
			}
			recordStocks[item] = qty
		default:
			s.warnRow(FileRecords, lines[i], fmt.Errorf("unknown record type %q", row[0]))
		}
	}

	s.external = external
	s.recordStocks = recordStocks
	return nil
}

// ExternalAt returns the externally persisted occupied set for the
// exact (date, time).
func (s *Store) ExternalAt(date, timeStr string) map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]bool)
	if byTime, ok := s.external[date]; ok {
		for id := range byTime[timeStr] {
			out[id] = true
		}
	}
	return out
}

// RecurringAt returns the recurring block set for (weekday, time).
func (s *Store) RecurringAt(day time.Weekday, timeStr string) map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]bool)
	if byTime, ok := s.weekly[day]; ok {
		for id := range byTime[timeStr] {
			out[id] = true
		}
	}
	return out
}

// OccupiedAt unions the three occupancy sources (ledger, external
// records, recurring weekly blocks) for one slot.
func (s *Store) OccupiedAt(date, timeStr string, day time.Weekday) map[int]bool {
	out := s.BookedAt(date, timeStr)
	for id := range s.ExternalAt(date, timeStr) {
		out[id] = true
	}
	for id := range s.RecurringAt(day, timeStr) {
		out[id] = true
	}
	return out
}
