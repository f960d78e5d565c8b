// Package xlsxgrid backs the Grid port with a local .xlsx workbook.
package xlsxgrid

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

// Workbook serializes all access to one excelize file behind a mutex
// and saves after every mutation. Concurrency control above row level
// (the ledger lock) lives in the usecase layer; this guard only keeps
// the file handle consistent.
type Workbook struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// Open loads the workbook at path, creating it with the standard
// sheets and the ledger header when it does not exist yet.
func Open(path string) (*Workbook, error) {
	var f *excelize.File
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f = excelize.NewFile()
		for _, sheet := range []string{domain.SheetProducts, domain.SheetOrders, domain.SheetClients, domain.SheetArchive} {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
		if err := writeRow(f, domain.SheetOrders, 0, domain.OrdersHeader); err != nil {
			return nil, err
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		log.Info().Str("path", path).Msg("workbook created")
	} else {
		var err error
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
	}
	return &Workbook{path: path, file: f}, nil
}

func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func writeRow(f *excelize.File, sheet string, index int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, index+1)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(row))
	for i, v := range row {
		vals[i] = v
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func (w *Workbook) Rows(_ context.Context, sheet string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return [][]string{}, nil
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *Workbook) AppendRow(ctx context.Context, sheet string, row []string) error {
	return w.AppendRows(ctx, sheet, [][]string{row})
}

func (w *Workbook) AppendRows(_ context.Context, sheet string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	existing, err := w.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	next := len(existing)
	for i, row := range rows {
		if err := writeRow(w.file, sheet, next+i, row); err != nil {
			return fmt.Errorf("write row %d on %s: %w", next+i, sheet, err)
		}
	}
	return w.save()
}

func (w *Workbook) SetRow(_ context.Context, sheet string, index int, row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := writeRow(w.file, sheet, index, row); err != nil {
		return fmt.Errorf("set row %d on %s: %w", index, sheet, err)
	}
	return w.save()
}

func (w *Workbook) DeleteRows(_ context.Context, sheet string, indices []int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		if err := w.file.RemoveRow(sheet, idx+1); err != nil {
			return fmt.Errorf("remove row %d on %s: %w", idx, sheet, err)
		}
	}
	return w.save()
}

func (w *Workbook) save() error {
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

var _ domain.Grid = (*Workbook)(nil)
