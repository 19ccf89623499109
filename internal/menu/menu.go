// Package menu derives the day's offering from deterministic rotation,
// weekly overrides and live inventory.
package menu

import (
	"time"

	"masabot/internal/metrics"
	"masabot/internal/models"
	"masabot/internal/store"
)

// Rotation parameters. Distinct strides keep the categories from
// rotating in lock-step; window sizes and display caps follow the
// original menu layout.
var (
	strides = map[string]int{
		models.CategorySoup:  3,
		models.CategoryMain:  5,
		models.CategorySalad: 2,
	}
	windows = map[string]int{
		models.CategorySoup:  4,
		models.CategoryMain:  4,
		models.CategorySalad: 2,
	}
	caps = map[string]int{
		models.CategorySoup:  4,
		models.CategoryMain:  4,
		models.CategorySalad: 2,
		models.CategoryDrink: 5,
	}
)

// Generator computes daily offerings. It is a pure function of the
// date, the pools, the override table and the inventory snapshot — no
// wall clock, no randomness.
type Generator struct {
	store  *store.Store
	anchor time.Time // rotation epoch; dayIndex counts days from here
}

func NewGenerator(st *store.Store, anchor time.Time) *Generator {
	return &Generator{store: st, anchor: anchor}
}

// DailyOffering composes the offering for a date.
func (g *Generator) DailyOffering(date string) models.Offering {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return models.Offering{Reason: models.ReasonInvalidInput, Message: "date must be YYYY-MM-DD"}
	}
	metrics.IncOfferingRequest()

	dayIndex := int(d.Sub(g.anchor).Hours() / 24)
	overrides := g.store.Overrides(d.Weekday())

	categories := make(map[string][]string, len(models.Categories))
	for _, cat := range models.Categories {
		var selected []string
		if ov := overrides[cat]; len(ov) > 0 {
			selected = ov
		} else if cat == models.CategoryDrink {
			// Drinks do not rotate; the whole pool is offered.
			selected = g.store.Pool(cat)
		} else {
			selected = rotate(g.store.Pool(cat), windows[cat], dayIndex*strides[cat])
		}
		categories[cat] = truncate(g.filterInStock(selected), caps[cat])
	}

	return models.Offering{
		OK:         true,
		Date:       date,
		Weekday:    d.Weekday(),
		Categories: categories,
		Reason:     models.ReasonOK,
		Message:    "offering composed",
	}
}

// rotate selects a window of count consecutive items cyclically,
// starting at offset mod len(pool). Offsets are normalized so dates
// before the anchor still rotate deterministically.
func rotate(pool []string, count, offset int) []string {
	if len(pool) == 0 {
		return nil
	}
	offset %= len(pool)
	if offset < 0 {
		offset += len(pool)
	}
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, pool[(offset+i)%len(pool)])
	}
	return out
}

// filterInStock drops items whose tracked quantity is zero. Untracked
// items default to available.
func (g *Generator) filterInStock(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if qty, tracked := g.store.StockFor(item); tracked && qty <= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

func truncate(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
