package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const stocksHeader = "item,quantity\n"

const defaultStocks = stocksHeader +
	"Ayran,50\n" +
	"Kola,40\n" +
	"Su,200\n" +
	"Şalgam,15\n" +
	"Çay,100\n"

func (s *Store) loadStocks() error {
	if err := s.ensureFile(FileStocks, defaultStocks); err != nil {
		return err
	}

	rows, lines, err := readRows(s.Path(FileStocks))
	if err != nil {
		return err
	}

	stocks := make(map[string]int, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			s.warnRow(FileStocks, lines[i], fmt.Errorf("want 2 fields, got %d", len(row)))
			continue
		}
		item := strings.ToLower(strings.TrimSpace(row[0]))
		if item == "" {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || qty < 0 {
			s.warnRow(FileStocks, lines[i], fmt.Errorf("bad quantity %q", row[1]))
			continue
		}
		stocks[item] = qty
	}

	s.stocks = stocks
	return nil
}

// StockFor reports the remaining quantity of an item. Unknown items are
// not tracked: the second return is false and the item counts as
// available. stocks.csv wins over records.csv.
func (s *Store) StockFor(item string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(item))
	if qty, ok := s.stocks[key]; ok {
		return qty, true
	}
	if qty, ok := s.recordStocks[key]; ok {
		return qty, true
	}
	return 0, false
}

// Stocks returns a copy of the tracked stocks.csv quantities.
func (s *Store) Stocks() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.stocks))
	for k, v := range s.stocks {
		out[k] = v
	}
	return out
}

// SetStock updates one item's quantity in memory and rewrites
// stocks.csv sorted by item with title-cased names. The in-memory
// update sticks even when the rewrite fails; the error comes back for
// logging.
func (s *Store) SetStock(item string, qty int) error {
	key := strings.ToLower(strings.TrimSpace(item))
	if key == "" || qty < 0 {
		return fmt.Errorf("invalid stock entry %q=%d", item, qty)
	}

	s.mu.Lock()
	if s.stocks == nil {
		s.stocks = make(map[string]int)
	}
	s.stocks[key] = qty

	keys := make([]string, 0, len(s.stocks))
	for k := range s.stocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(stocksHeader)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s,%d\n", titleCase(k), s.stocks[k])
	}
	s.mu.Unlock()

	return writeFileAtomic(s.Path(FileStocks), b.String())
}

// titleCase capitalizes the first rune of every word so the rewritten
// file stays readable. Original casing is not tracked.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
