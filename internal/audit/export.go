// Package audit exports the booking ledger and inventory as an xlsx
// workbook for back-office review.
package audit

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"masabot/internal/store"
)

// Exporter renders store contents into a spreadsheet.
type Exporter struct {
	store *store.Store
}

func NewExporter(st *store.Store) *Exporter {
	return &Exporter{store: st}
}

// Filename names the workbook after the export date.
func Filename(t time.Time) string {
	return fmt.Sprintf("rezervasyonlar_%s.xlsx", t.Format("2006-01-02"))
}

// Export writes a workbook with one sheet per dataset.
func (e *Exporter) Export(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeReservations(f); err != nil {
		return err
	}
	if err := e.writeTables(f); err != nil {
		return err
	}
	if err := e.writeStocks(f); err != nil {
		return err
	}
	return f.Write(w)
}

func (e *Exporter) writeReservations(f *excelize.File) error {
	const sheet = "Rezervasyonlar"
	f.SetSheetName("Sheet1", sheet)

	list, err := e.store.AllReservations()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	if err := writeHeader(f, sheet, []string{"Tarih", "Saat", "Masa", "Müşteri", "Kişi", "Not", "Sahip"}); err != nil {
		return err
	}
	for i, r := range list {
		row := []interface{}{r.Date, r.Time, r.TableID, r.CustomerName, r.PartySize, r.Note, r.OwnerID}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeTables(f *excelize.File) error {
	const sheet = "Masalar"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, []string{"No", "Kapasite", "Konum"}); err != nil {
		return err
	}
	for i, t := range e.store.Tables() {
		if err := writeRow(f, sheet, i+2, []interface{}{t.ID, t.Capacity, t.Location}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeStocks(f *excelize.File) error {
	const sheet = "Stoklar"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, []string{"Ürün", "Adet"}); err != nil {
		return err
	}

	stocks := e.store.Stocks()
	items := make([]string, 0, len(stocks))
	for item := range stocks {
		items = append(items, item)
	}
	sort.Strings(items)

	for i, item := range items {
		if err := writeRow(f, sheet, i+2, []interface{}{item, stocks[item]}); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	if err := writeRow(f, sheet, 1, toCells(columns)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil
	}
	start, _ := excelize.CoordinatesToCellName(1, 1)
	end, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.SetCellStyle(sheet, start, end, style)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func toCells(columns []string) []interface{} {
	out := make([]interface{}, len(columns))
	for i, c := range columns {
		out[i] = c
	}
	return out
}
