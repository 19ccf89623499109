package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"masabot/internal/models"
)

const (
	poolHeader  = "name\n"
	menusHeader = "weekday,category,item\n"
)

// Default rotation pools, synthesized on first run.
var defaultPools = map[string][]string{
	FileSoups: {
		"Mercimek Çorbası", "Yayla Çorbası", "Ezogelin Çorbası", "Domates Çorbası",
		"Tarhana Çorbası", "Mantar Çorbası", "Tavuk Çorbası", "Brokoli Çorbası",
	},
	FileMains: {
		"Adana Kebap", "Urfa Kebap", "Kuzu Tandır", "Kuzu Pirzola",
		"Tavuk Şinitzel", "Tavuk Sote", "Balık Izgara", "Balık Buğulama",
		"Köfte", "Mantı", "Lahmacun", "İçli Köfte",
		"Pide", "Et Sote", "Sebzeli Güveç", "Fırın Tavuk",
	},
	FileSalads: {
		"Çoban Salata", "Mevsim Salata", "Roka Salata", "Piyaz",
		"Cevizli Salata", "Gavurdağı Salatası",
	},
	FileDrinks: {"Ayran", "Kola", "Su", "Şalgam", "Çay"},
}

// poolCategory maps a list file to its offering category.
var poolCategory = map[string]string{
	FileSoups:  models.CategorySoup,
	FileMains:  models.CategoryMain,
	FileSalads: models.CategorySalad,
	FileDrinks: models.CategoryDrink,
}

func (s *Store) loadPool(file string) error {
	defaults := poolHeader + strings.Join(defaultPools[file], "\n") + "\n"
	if err := s.ensureFile(file, defaults); err != nil {
		return err
	}

	rows, _, err := readRows(s.Path(file))
	if err != nil {
		return err
	}

	items := make([]string, 0, len(rows))
	for _, row := range rows {
		// Single-column list file; extra commas would split the name,
		// so rejoin what the tokenizer separated.
		name := strings.TrimSpace(strings.Join(row, " "))
		if name != "" {
			items = append(items, name)
		}
	}

	if s.pools == nil {
		s.pools = make(map[string][]string)
	}
	s.pools[poolCategory[file]] = items
	return nil
}

// Pool returns the default rotation pool for a category.
func (s *Store) Pool(category string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.pools[category]...)
}

// loadMenus reads the weekly override table: weekday (0=Sunday..6),
// category, item. A weekday with a non-empty category list overrides
// rotation verbatim.
func (s *Store) loadMenus() error {
	if err := s.ensureFile(FileMenus, menusHeader); err != nil {
		return err
	}

	rows, lines, err := readRows(s.Path(FileMenus))
	if err != nil {
		return err
	}

	overrides := make(map[time.Weekday]map[string][]string)
	for i, row := range rows {
		if len(row) < 3 {
			s.warnRow(FileMenus, lines[i], fmt.Errorf("want 3 fields, got %d", len(row)))
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || day < 0 || day > 6 {
			s.warnRow(FileMenus, lines[i], fmt.Errorf("bad weekday %q", row[0]))
			continue
		}
		category := strings.ToLower(strings.TrimSpace(row[1]))
		switch category {
		case models.CategorySoup, models.CategoryMain, models.CategorySalad, models.CategoryDrink:
		default:
			s.warnRow(FileMenus, lines[i], fmt.Errorf("unknown category %q", row[1]))
			continue
		}
		item := strings.TrimSpace(row[2])
		if item == "" {
			continue
		}

		weekday := time.Weekday(day)
		if overrides[weekday] == nil {
			overrides[weekday] = make(map[string][]string)
		}
		overrides[weekday][category] = append(overrides[weekday][category], item)
	}

	s.overrides = overrides
	return nil
}

// Overrides returns the override lists for a weekday, keyed by
// category. Missing categories fall back to rotation.
func (s *Store) Overrides(day time.Weekday) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string)
	for cat, items := range s.overrides[day] {
		out[cat] = append([]string(nil), items...)
	}
	return out
}
