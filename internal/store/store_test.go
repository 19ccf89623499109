package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masabot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := Open(t.TempDir(), &logger)
	require.NoError(t, err)
	return s
}

func writeBacking(t *testing.T, s *Store, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.Path(name), []byte(content), 0o644))
	require.NoError(t, s.Reload(name))
}

func TestOpen_SynthesizesDefaults(t *testing.T) {
	s := newTestStore(t)

	tables := s.Tables()
	require.Len(t, tables, 20)
	assert.Equal(t, 1, tables[0].ID)
	assert.Equal(t, 4, tables[0].Capacity)
	assert.Equal(t, "Salon", tables[0].Location)

	qty, tracked := s.StockFor("ayran")
	assert.True(t, tracked)
	assert.Equal(t, 50, qty)
	qty, tracked = s.StockFor("Şalgam")
	assert.True(t, tracked)
	assert.Equal(t, 15, qty)

	assert.Len(t, s.Pool(models.CategorySoup), 8)
	assert.Len(t, s.Pool(models.CategoryMain), 16)
	assert.Len(t, s.Pool(models.CategorySalad), 6)
	assert.Len(t, s.Pool(models.CategoryDrink), 5)

	// All backing files exist after first open.
	for _, name := range []string{
		FileTables, FileReservations, FileOccupancy, FileStocks,
		FileMenus, FileRecords, FileSoups, FileMains, FileSalads, FileDrinks,
	} {
		_, err := os.Stat(s.Path(name))
		assert.NoError(t, err, name)
	}
}

func TestLoadTables_SkipsMalformedRows(t *testing.T) {
	s := newTestStore(t)
	writeBacking(t, s, FileTables, "id,capacity,location\n"+
		"1,4,Salon\n"+
		"oops,4,Salon\n"+
		"2,-1,Salon\n"+
		"3,6\n"+
		"\n"+
		"4,2,Teras\n")

	tables := s.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].ID)
	assert.Equal(t, 4, tables[1].ID)
	assert.Equal(t, "Teras", tables[1].Location)
}

func TestAppendAndRemoveReservation(t *testing.T) {
	s := newTestStore(t)

	r := models.Reservation{
		Date: "2025-10-25", Time: "19:00", TableID: 3,
		CustomerName: "Ali Veli", PartySize: 2, OwnerID: "42",
	}
	require.NoError(t, s.AppendReservation(r))

	got, ok := s.Reservation("2025-10-25", "19:00", 3)
	require.True(t, ok)
	assert.Equal(t, "Ali Veli", got.CustomerName)
	assert.True(t, s.BookedAt("2025-10-25", "19:00")[3])

	// Survives a reload from disk.
	require.NoError(t, s.Reload(FileReservations))
	_, ok = s.Reservation("2025-10-25", "19:00", 3)
	assert.True(t, ok)

	require.NoError(t, s.RemoveReservation("2025-10-25", "19:00", 3))
	_, ok = s.Reservation("2025-10-25", "19:00", 3)
	assert.False(t, ok)

	require.NoError(t, s.Reload(FileReservations))
	_, ok = s.Reservation("2025-10-25", "19:00", 3)
	assert.False(t, ok)
}

func TestAppendReservation_SanitizesFreeText(t *testing.T) {
	s := newTestStore(t)

	r := models.Reservation{
		Date: "2025-10-25", Time: "19:00", TableID: 1,
		CustomerName: "Ali, Veli", PartySize: 2, Note: "pencere\nkenarı",
	}
	require.NoError(t, s.AppendReservation(r))
	require.NoError(t, s.Reload(FileReservations))

	got, ok := s.Reservation("2025-10-25", "19:00", 1)
	require.True(t, ok)
	assert.Equal(t, "Ali  Veli", got.CustomerName)
	assert.Equal(t, "pencere kenarı", got.Note)
}

func TestLoadReservations_TolerantParsing(t *testing.T) {
	s := newTestStore(t)
	writeBacking(t, s, FileReservations, reservationsHeader+
		"2025-10-25,19:00,1,Ali,2,,42\n"+
		"2025-10-25,19:00,notanumber,Ali,2\n"+
		"2025-10-25,19:00\n"+
		"2025-10-26,20:00,2,Ayşe,3\n")

	all, err := s.AllReservations()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ali", all[0].CustomerName)
	assert.Equal(t, "", all[1].OwnerID)
}

func TestReservationsForOwner(t *testing.T) {
	s := newTestStore(t)
	writeBacking(t, s, FileReservations, reservationsHeader+
		"2025-10-25,19:00,1,Ali,2,,42\n"+
		"2025-10-26,20:00,2,Ayşe,3,,7\n"+
		"2025-10-27,18:00,3,Ali,2,,42\n")

	mine, err := s.ReservationsForOwner("42")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-10-25", mine[0].Date)
	assert.Equal(t, "2025-10-27", mine[1].Date)
}

func TestOccupiedAt_UnionsSources(t *testing.T) {
	s := newTestStore(t)

	// Ledger source.
	require.NoError(t, s.AppendReservation(models.Reservation{
		Date: "2025-10-25", Time: "19:00", TableID: 1, CustomerName: "Ali", PartySize: 2,
	}))
	// External records source, including a Turkish status marker.
	writeBacking(t, s, FileRecords, recordsHeader+
		"table,2025-10-25,19:00,2,occupied,,\n"+
		"table,2025-10-25,19:00,3,dolu,,\n"+
		"table,2025-10-25,19:00,4,free,,\n"+
		"stock,,,,,Limonata,12\n")
	// Recurring weekly source: 2025-10-25 is a Saturday (weekday 6).
	writeBacking(t, s, FileOccupancy, occupancyHeader+
		"6,19:00,5,occupied\n"+
		"6,20:00,6,occupied\n"+
		"3,19:00,7,occupied\n")

	occupied := s.OccupiedAt("2025-10-25", "19:00", time.Saturday)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 5: true}, occupied)

	// The stock row landed in the fallback inventory.
	qty, tracked := s.StockFor("limonata")
	assert.True(t, tracked)
	assert.Equal(t, 12, qty)
}

func TestStockFor_StocksFileWinsOverRecords(t *testing.T) {
	s := newTestStore(t)
	writeBacking(t, s, FileRecords, recordsHeader+"stock,,,,,Ayran,5\n")

	qty, tracked := s.StockFor("Ayran")
	assert.True(t, tracked)
	assert.Equal(t, 50, qty)

	_, tracked = s.StockFor("Mercimek Çorbası")
	assert.False(t, tracked)
}

func TestSetStock_RewritesSortedTitleCased(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetStock("ayran", 7))

	qty, tracked := s.StockFor("AYRAN")
	assert.True(t, tracked)
	assert.Equal(t, 7, qty)

	raw, err := os.ReadFile(s.Path(FileStocks))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Ayran,7\n")

	require.NoError(t, s.Reload(FileStocks))
	qty, _ = s.StockFor("ayran")
	assert.Equal(t, 7, qty)
}

func TestOverrides(t *testing.T) {
	s := newTestStore(t)
	writeBacking(t, s, FileMenus, menusHeader+
		"5,soup,İşkembe Çorbası\n"+
		"5,soup,Paça Çorbası\n"+
		"5,nonsense,Foo\n"+
		"9,main,Bar\n")

	ov := s.Overrides(time.Friday)
	assert.Equal(t, []string{"İşkembe Çorbası", "Paça Çorbası"}, ov[models.CategorySoup])
	assert.Empty(t, ov[models.CategoryMain])
	assert.Empty(t, s.Overrides(time.Monday))
}

func TestReload_UnknownFile(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Reload("nope.csv"))
}

func TestReadRawAndReplaceRaw(t *testing.T) {
	s := newTestStore(t)

	raw, err := s.ReadRaw(FileStocks)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Ayran,50")

	_, err = s.ReadRaw("../etc/passwd")
	assert.Error(t, err)

	next := stocksHeader + "Kola,3\n"
	require.NoError(t, s.ReplaceRaw(FileStocks, []byte(next)))
	qty, tracked := s.StockFor("kola")
	assert.True(t, tracked)
	assert.Equal(t, 3, qty)
	_, tracked = s.StockFor("ayran")
	assert.False(t, tracked)
}

func TestBackupService_SnapshotAndCleanup(t *testing.T) {
	s := newTestStore(t)
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()

	svc := NewBackupService(s, dir, 1, &logger)
	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	snapshot := filepath.Join(dir, entries[0].Name())
	raw, err := os.ReadFile(filepath.Join(snapshot, FileTables))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "1,4,Salon")

	// A snapshot older than keepDays gets removed.
	old := filepath.Join(dir, "backup_20200101_000000")
	require.NoError(t, os.MkdirAll(old, 0o755))
	svc.CleanupOldBackups()
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(snapshot)
	assert.NoError(t, err)
}
