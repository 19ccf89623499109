package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"masabot/internal/models"
)

const reservationsHeader = "date,time,resource_id,customer_name,party_size,note,owner_id\n"

func (s *Store) loadReservations() error {
	if err := s.ensureFile(FileReservations, reservationsHeader); err != nil {
		return err
	}

	records, diags, err := s.scanLedger()
	if err != nil {
		return err
	}
	for _, d := range diags {
		s.warnRow(FileReservations, d.Line, d.Err)
	}

	index := make(map[string]map[string]map[int]models.Reservation)
	for _, r := range records {
		byTime, ok := index[r.Date]
		if !ok {
			byTime = make(map[string]map[int]models.Reservation)
			index[r.Date] = byTime
		}
		byTable, ok := byTime[r.Time]
		if !ok {
			byTable = make(map[int]models.Reservation)
			byTime[r.Time] = byTable
		}
		byTable[r.TableID] = r
	}

	s.reservations = index
	return nil
}

// scanLedger reads every record currently in the ledger file, in file
// order, together with diagnostics for skipped rows.
func (s *Store) scanLedger() ([]models.Reservation, []RowError, error) {
	rows, lines, err := readRows(s.Path(FileReservations))
	if err != nil {
		return nil, nil, err
	}

	var records []models.Reservation
	var diags []RowError
	for i, row := range rows {
		r, err := parseReservationRow(row)
		if err != nil {
			diags = append(diags, RowError{Line: lines[i], Err: err})
			continue
		}
		records = append(records, r)
	}
	return records, diags, nil
}

func parseReservationRow(row []string) (models.Reservation, error) {
	if len(row) < 5 {
		return models.Reservation{}, fmt.Errorf("want at least 5 fields, got %d", len(row))
	}
	tableID, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return models.Reservation{}, fmt.Errorf("bad resource id %q", row[2])
	}
	partySize, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return models.Reservation{}, fmt.Errorf("bad party size %q", row[4])
	}
	r := models.Reservation{
		Date:         strings.TrimSpace(row[0]),
		Time:         strings.TrimSpace(row[1]),
		TableID:      tableID,
		CustomerName: strings.TrimSpace(row[3]),
		PartySize:    partySize,
	}
	if r.Date == "" || r.Time == "" {
		return models.Reservation{}, fmt.Errorf("empty date or time")
	}
	if len(row) > 5 {
		r.Note = strings.TrimSpace(row[5])
	}
	if len(row) > 6 {
		r.OwnerID = strings.TrimSpace(row[6])
	}
	return r, nil
}

// AppendReservation commits a booking: the in-memory index is updated
// unconditionally, then the record is appended to the ledger file. A
// write error is returned for the caller to log; it does not undo the
// in-memory commit (durability is advisory for the process lifetime).
func (s *Store) AppendReservation(r models.Reservation) error {
	s.mu.Lock()
	if s.reservations == nil {
		s.reservations = make(map[string]map[string]map[int]models.Reservation)
	}
	byTime, ok := s.reservations[r.Date]
	if !ok {
		byTime = make(map[string]map[int]models.Reservation)
		s.reservations[r.Date] = byTime
	}
	byTable, ok := byTime[r.Time]
	if !ok {
		byTable = make(map[int]models.Reservation)
		byTime[r.Time] = byTable
	}
	byTable[r.TableID] = r
	s.mu.Unlock()

	line := fmt.Sprintf("%s,%s,%d,%s,%d,%s,%s\n",
		r.Date, r.Time, r.TableID,
		sanitizeField(r.CustomerName), r.PartySize,
		sanitizeField(r.Note), sanitizeField(r.OwnerID))

	f, err := os.OpenFile(s.Path(FileReservations), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}

// RemoveReservation drops a booking from the index and rewrites the
// ledger file without the matching record. The index update always
// happens; the rewrite is best-effort and its error is returned for
// logging.
func (s *Store) RemoveReservation(date, timeStr string, tableID int) error {
	s.mu.Lock()
	if byTime, ok := s.reservations[date]; ok {
		if byTable, ok := byTime[timeStr]; ok {
			delete(byTable, tableID)
			if len(byTable) == 0 {
				delete(byTime, timeStr)
			}
		}
		if len(byTime) == 0 {
			delete(s.reservations, date)
		}
	}
	s.mu.Unlock()

	records, _, err := s.scanLedger()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(reservationsHeader)
	for _, r := range records {
		if r.Date == date && r.Time == timeStr && r.TableID == tableID {
			continue
		}
		fmt.Fprintf(&b, "%s,%s,%d,%s,%d,%s,%s\n",
			r.Date, r.Time, r.TableID,
			sanitizeField(r.CustomerName), r.PartySize,
			sanitizeField(r.Note), sanitizeField(r.OwnerID))
	}
	return writeFileAtomic(s.Path(FileReservations), b.String())
}

// Reservation returns the indexed record for (date, time, table).
func (s *Store) Reservation(date, timeStr string, tableID int) (models.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byTime, ok := s.reservations[date]; ok {
		if byTable, ok := byTime[timeStr]; ok {
			r, ok := byTable[tableID]
			return r, ok
		}
	}
	return models.Reservation{}, false
}

// BookedAt returns the set of table ids booked via the ledger for the
// exact (date, time).
func (s *Store) BookedAt(date, timeStr string) map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]bool)
	if byTime, ok := s.reservations[date]; ok {
		for id := range byTime[timeStr] {
			out[id] = true
		}
	}
	return out
}

// ReservationsForOwner linearly scans the persisted ledger for records
// with the given owner id.
func (s *Store) ReservationsForOwner(ownerID string) ([]models.Reservation, error) {
	records, _, err := s.scanLedger()
	if err != nil {
		return nil, err
	}
	var out []models.Reservation
	for _, r := range records {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AllReservations returns every persisted ledger record in file order.
func (s *Store) AllReservations() ([]models.Reservation, error) {
	records, _, err := s.scanLedger()
	return records, err
}
