package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"unicode/utf16"

	"inventario/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	CSVFilename  = "inventario.csv"
	XLSXFilename = "inventario.xlsx"
	XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportSheet = "productos"
	exportTable = "productos"
)

// Columns is the header row shared by both export formats.
var Columns = []string{
	"id", "code", "name", "description", "category",
	"quantity", "unit_price", "location", "supplier",
}

func exportRecord(p models.Product) []string {
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		p.Code,
		p.Name,
		p.Description,
		p.Category,
		strconv.Itoa(p.Quantity),
		strconv.FormatFloat(p.UnitPrice, 'f', -1, 64),
		p.Location,
		p.Supplier,
	}
}

// CellTooLongError reports a text value that does not fit in one XLSX cell.
// excelize would otherwise cut it without saying so.
type CellTooLongError struct {
	ID     uint
	Column string
	Length int
}

func (e *CellTooLongError) Error() string {
	return fmt.Sprintf("producto %d: columna %s tiene %d caracteres, Excel admite %d",
		e.ID, e.Column, e.Length, excelize.TotalCellChars)
}

func (e *CellTooLongError) Unwrap() error { return excelize.ErrCellCharsLength }

// checkCellLengths rejects products whose text columns exceed the XLSX cell
// limit, counted in UTF-16 units like excelize does.
func checkCellLengths(p models.Product) error {
	text := []struct {
		column string
		value  string
	}{
		{"code", p.Code},
		{"name", p.Name},
		{"description", p.Description},
		{"category", p.Category},
		{"location", p.Location},
		{"supplier", p.Supplier},
	}
	for _, t := range text {
		if n := len(utf16.Encode([]rune(t.value))); n > excelize.TotalCellChars {
			return &CellTooLongError{ID: p.ID, Column: t.column, Length: n}
		}
	}
	return nil
}

// WriteCSV writes a header row and one row per product, separated by ';'.
// Consumers of the file rely on the semicolon.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, p := range products {
		if err := cw.Write(exportRecord(p)); err != nil {
			return fmt.Errorf("csv row %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same header and rows as WriteCSV into a single sheet,
// with quantity, unit_price and id as numeric cells. A non-empty export is
// also registered as an Excel table. A text value too long for a cell fails
// the export with *CellTooLongError before anything is written.
func WriteXLSX(w io.Writer, products []models.Product) (err error) {
	for _, p := range products {
		if err := checkCellLengths(p); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			p.ID, p.Code, p.Name, p.Description, p.Category,
			p.Quantity, p.UnitPrice, p.Location, p.Supplier,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", p.ID, err)
		}
	}

	if len(products) > 0 {
		last, err := excelize.CoordinatesToCellName(len(Columns), len(products)+1)
		if err != nil {
			return err
		}
		if err := f.AddTable(exportSheet, &excelize.Table{
			Range:     "A1:" + last,
			Name:      exportTable,
			StyleName: "TableStyleMedium2",
		}); err != nil {
			return fmt.Errorf("xlsx table: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
