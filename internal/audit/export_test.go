package audit

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"masabot/internal/models"
	"masabot/internal/store"
)

func TestExport(t *testing.T) {
	logger := zerolog.New(io.Discard)
	st, err := store.Open(t.TempDir(), &logger)
	require.NoError(t, err)
	require.NoError(t, st.AppendReservation(models.Reservation{
		Date: "2025-10-25", Time: "19:00", TableID: 3,
		CustomerName: "Ali Veli", PartySize: 2, OwnerID: "42",
	}))

	var buf bytes.Buffer
	require.NoError(t, NewExporter(st).Export(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Rezervasyonlar", "Masalar", "Stoklar"}, f.GetSheetList())

	name, err := f.GetCellValue("Rezervasyonlar", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Ali Veli", name)

	capacity, err := f.GetCellValue("Masalar", "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", capacity)

	rows, err := f.GetRows("Stoklar")
	require.NoError(t, err)
	// Header plus the five default items.
	assert.Len(t, rows, 6)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "rezervasyonlar_2025-10-24.xlsx",
		Filename(time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)))
}
