package menu

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masabot/internal/models"
	"masabot/internal/store"
)

var anchor = time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T) (*Generator, *store.Store) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st, err := store.Open(t.TempDir(), &logger)
	require.NoError(t, err)
	return NewGenerator(st, anchor), st
}

func TestDailyOffering_AnchorDay(t *testing.T) {
	g, _ := newTestGenerator(t)

	o := g.DailyOffering("2025-10-24")
	require.True(t, o.OK)
	assert.Equal(t, time.Friday, o.Weekday)

	assert.Equal(t, []string{
		"Mercimek Çorbası", "Yayla Çorbası", "Ezogelin Çorbası", "Domates Çorbası",
	}, o.Categories[models.CategorySoup])
	assert.Equal(t, []string{
		"Adana Kebap", "Urfa Kebap", "Kuzu Tandır", "Kuzu Pirzola",
	}, o.Categories[models.CategoryMain])
	assert.Equal(t, []string{"Çoban Salata", "Mevsim Salata"}, o.Categories[models.CategorySalad])
	assert.Equal(t, []string{"Ayran", "Kola", "Su", "Şalgam", "Çay"}, o.Categories[models.CategoryDrink])
}

func TestDailyOffering_RotatesByStride(t *testing.T) {
	g, _ := newTestGenerator(t)

	o := g.DailyOffering("2025-10-25")
	require.True(t, o.OK)

	// Day index 1: soups advance by 3, mains by 5, salads by 2.
	assert.Equal(t, []string{
		"Domates Çorbası", "Tarhana Çorbası", "Mantar Çorbası", "Tavuk Çorbası",
	}, o.Categories[models.CategorySoup])
	assert.Equal(t, []string{
		"Tavuk Sote", "Balık Izgara", "Balık Buğulama", "Köfte",
	}, o.Categories[models.CategoryMain])
	assert.Equal(t, []string{"Roka Salata", "Piyaz"}, o.Categories[models.CategorySalad])
}

func TestDailyOffering_Deterministic(t *testing.T) {
	g, _ := newTestGenerator(t)

	first := g.DailyOffering("2025-11-11")
	second := g.DailyOffering("2025-11-11")
	assert.Equal(t, first, second)
}

func TestDailyOffering_SoupCycleRepeats(t *testing.T) {
	g, _ := newTestGenerator(t)

	// Soup stride 3 over a pool of 8 repeats every 8 days.
	day0 := g.DailyOffering("2025-10-24")
	day8 := g.DailyOffering("2025-11-01")
	assert.Equal(t, day0.Categories[models.CategorySoup], day8.Categories[models.CategorySoup])
}

func TestDailyOffering_OutOfStockExcluded(t *testing.T) {
	g, st := newTestGenerator(t)
	require.NoError(t, st.SetStock("Ayran", 0))

	o := g.DailyOffering("2025-10-24")
	require.True(t, o.OK)
	assert.Equal(t, []string{"Kola", "Su", "Şalgam", "Çay"}, o.Categories[models.CategoryDrink])

	// Items not tracked in inventory stay available.
	assert.Contains(t, o.Categories[models.CategorySoup], "Mercimek Çorbası")
}

func TestDailyOffering_OverridesVerbatim(t *testing.T) {
	g, st := newTestGenerator(t)
	content := "weekday,category,item\n" +
		"5,soup,İşkembe Çorbası\n" +
		"5,soup,Paça Çorbası\n"
	require.NoError(t, os.WriteFile(st.Path(store.FileMenus), []byte(content), 0o644))
	require.NoError(t, st.Reload(store.FileMenus))

	// 2025-10-24 is a Friday (weekday 5).
	o := g.DailyOffering("2025-10-24")
	require.True(t, o.OK)
	assert.Equal(t, []string{"İşkembe Çorbası", "Paça Çorbası"}, o.Categories[models.CategorySoup])
	// Categories without overrides still rotate.
	assert.Equal(t, []string{
		"Adana Kebap", "Urfa Kebap", "Kuzu Tandır", "Kuzu Pirzola",
	}, o.Categories[models.CategoryMain])
}

func TestDailyOffering_OverrideCapped(t *testing.T) {
	g, st := newTestGenerator(t)
	content := "weekday,category,item\n" +
		"5,salad,S1\n5,salad,S2\n5,salad,S3\n5,salad,S4\n"
	require.NoError(t, os.WriteFile(st.Path(store.FileMenus), []byte(content), 0o644))
	require.NoError(t, st.Reload(store.FileMenus))

	o := g.DailyOffering("2025-10-24")
	require.True(t, o.OK)
	assert.Equal(t, []string{"S1", "S2"}, o.Categories[models.CategorySalad])
}

func TestDailyOffering_BeforeAnchorStillDeterministic(t *testing.T) {
	g, _ := newTestGenerator(t)

	o := g.DailyOffering("2025-10-23")
	require.True(t, o.OK)
	// Day index -1: soup offset -3 normalizes to 5.
	assert.Equal(t, []string{
		"Mantar Çorbası", "Tavuk Çorbası", "Brokoli Çorbası", "Mercimek Çorbası",
	}, o.Categories[models.CategorySoup])
}

func TestDailyOffering_InvalidDate(t *testing.T) {
	g, _ := newTestGenerator(t)
	o := g.DailyOffering("24.10.2025")
	assert.False(t, o.OK)
	assert.Equal(t, models.ReasonInvalidInput, o.Reason)
}
