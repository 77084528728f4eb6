package service

import (
	"context"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"lunchsync/internal/model"
)

// WorkbookReader reads order weeks from an .xlsx workbook: every sheet is
// one week and its title is the week label.
type WorkbookReader struct{}

func NewWorkbookReader() *WorkbookReader {
	return &WorkbookReader{}
}

func (r *WorkbookReader) ListWeeks(ctx context.Context, sheetID, cellRange string) iter.Seq2[model.RawWeek, error] {
	return func(yield func(model.RawWeek, error) bool) {
		f, err := excelize.OpenFile(sheetID)
		if err != nil {
			yield(model.RawWeek{}, fmt.Errorf("open workbook %s: %w", sheetID, err))
			return
		}
		defer f.Close()

		for _, name := range f.GetSheetList() {
			if ctx.Err() != nil {
				return
			}
			rows, err := f.GetRows(name)
			if err == nil {
				rows, err = cropRange(rows, cellRange)
			}
			if err != nil {
				if !yield(model.RawWeek{Label: name}, fmt.Errorf("read sheet %q: %w", name, err)) {
					return
				}
				continue
			}
			if !yield(model.RawWeek{Label: name, Rows: rows}, nil) {
				return
			}
		}
	}
}

// cropRange keeps the cells inside an A1 range such as "A2:F60" or "A:F".
func cropRange(rows [][]string, cellRange string) ([][]string, error) {
	if _, after, ok := strings.Cut(cellRange, "!"); ok {
		cellRange = after
	}
	cellRange = strings.TrimSpace(cellRange)
	if cellRange == "" {
		return rows, nil
	}
	from, to, ok := strings.Cut(cellRange, ":")
	if !ok {
		to = from
	}
	c1, r1, err := rangeBound(from, 1)
	if err != nil {
		return nil, err
	}
	c2, r2, err := rangeBound(to, math.MaxInt)
	if err != nil {
		return nil, err
	}
	if c2 < c1 || r2 < r1 {
		return nil, fmt.Errorf("%w: inverted range %q", model.ErrParse, cellRange)
	}

	out := make([][]string, 0, len(rows))
	for i := r1 - 1; i < len(rows) && i < r2; i++ {
		row := rows[i]
		var cells []string
		if c1-1 < len(row) {
			cells = slices.Clone(row[c1-1 : min(len(row), c2)])
		}
		out = append(out, cells)
	}
	return out, nil
}

func rangeBound(ref string, defaultRow int) (int, int, error) {
	ref = strings.TrimSpace(ref)
	if col, row, err := excelize.CellNameToCoordinates(ref); err == nil {
		return col, row, nil
	}
	col, err := excelize.ColumnNameToNumber(ref)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: range bound %q", model.ErrParse, ref)
	}
	return col, defaultRow, nil
}
