package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook is a TableStore backed by a single XLSX file, one sheet per
// logical table with a header row. This mirrors how the business actually
// keeps its books: a spreadsheet as a makeshift database.
type Workbook struct {
	path string
	mu   sync.Mutex
}

// NewWorkbook returns a workbook store for the given file path. The file
// is created lazily on first write.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// ReadTable implements TableStore.
func (w *Workbook) ReadTable(ctx context.Context, table Table) ([]Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		if os.IsNotExist(err) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	raw, err := f.GetRows(table.Name)
	if err != nil {
		// Missing sheet reads as an empty table.
		return []Row{}, nil
	}
	if len(raw) < 2 {
		return []Row{}, nil
	}

	header := raw[0]
	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		rows = append(rows, Normalize(table, row))
	}
	return rows, nil
}

// OverwriteTable implements TableStore. The sheet is dropped and rebuilt
// so stale rows below the new length cannot survive.
func (w *Workbook) OverwriteTable(ctx context.Context, table Table, rows []Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.openOrCreate()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	_ = f.DeleteSheet(table.Name)
	if _, err := f.NewSheet(table.Name); err != nil {
		return fmt.Errorf("create sheet %s: %w", table.Name, err)
	}
	if err := w.writeHeader(f, table); err != nil {
		return err
	}
	for i, row := range rows {
		if err := w.writeRow(f, table, i+2, row); err != nil {
			return err
		}
	}
	w.dropDefaultSheet(f, table)
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// AppendRow implements TableStore, creating the sheet with its header row
// on first write.
func (w *Workbook) AppendRow(ctx context.Context, table Table, row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.openOrCreate()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	next := 2
	if idx, err := f.GetSheetIndex(table.Name); err != nil || idx < 0 {
		if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", table.Name, err)
		}
		if err := w.writeHeader(f, table); err != nil {
			return err
		}
	} else {
		existing, err := f.GetRows(table.Name)
		if err != nil {
			return fmt.Errorf("read sheet %s: %w", table.Name, err)
		}
		if len(existing) == 0 {
			if err := w.writeHeader(f, table); err != nil {
				return err
			}
			existing = [][]string{table.Columns}
		}
		next = len(existing) + 1
	}

	if err := w.writeRow(f, table, next, row); err != nil {
		return err
	}
	w.dropDefaultSheet(f, table)
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Workbook) open() (*excelize.File, error) {
	if _, err := os.Stat(w.path); err != nil {
		return nil, err
	}
	return excelize.OpenFile(w.path)
}

func (w *Workbook) openOrCreate() (*excelize.File, error) {
	if _, err := os.Stat(w.path); err != nil {
		if os.IsNotExist(err) {
			return excelize.NewFile(), nil
		}
		return nil, err
	}
	return excelize.OpenFile(w.path)
}

func (w *Workbook) writeHeader(f *excelize.File, table Table) error {
	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header for %s: %w", table.Name, err)
	}
	return nil
}

func (w *Workbook) writeRow(f *excelize.File, table Table, rowNum int, row Row) error {
	normalized := Normalize(table, row)
	cells := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		cells[i] = normalized[col]
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := f.SetSheetRow(table.Name, cell, &cells); err != nil {
		return fmt.Errorf("write row %d of %s: %w", rowNum, table.Name, err)
	}
	return nil
}

// dropDefaultSheet removes excelize's implicit Sheet1 once a real sheet
// exists, so fresh workbooks only contain ledger tables.
func (w *Workbook) dropDefaultSheet(f *excelize.File, table Table) {
	if table.Name == "Sheet1" {
		return
	}
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		_ = f.DeleteSheet("Sheet1")
	}
}
