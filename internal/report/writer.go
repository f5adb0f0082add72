package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"gerencial/internal/etlerr"
	"gerencial/internal/source"
)

// Write saves sheets, in order, to path. The workbook is built in a temp file next
// to path and renamed into place, so a failed run never leaves a partial report.
func Write(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return &etlerr.WriteError{Path: path, Cause: fmt.Errorf("no sheets")}
	}
	if err := write(path, sheets); err != nil {
		return &etlerr.WriteError{Path: path, Cause: err}
	}
	return nil
}

func write(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(first, s.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return err
		}
		if err := fillSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".report-*.xlsx")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func fillSheet(f *excelize.File, s Sheet) error {
	for i, h := range s.Header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range s.Rows {
		for c, raw := range row {
			v, ok := cellValue(raw)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(s.Name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue maps a row value onto what the cell holds. ok is false for cells left
// empty: nil pointers, null source cells and NaN. Infinities are written as text.
func cellValue(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case *string:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *float64:
		if x == nil {
			return nil, false
		}
		return floatCell(*x)
	case float64:
		return floatCell(x)
	case *time.Time:
		if x == nil {
			return nil, false
		}
		return *x, true
	case source.Value:
		if x.Null {
			return nil, false
		}
		if x.Kind == source.KindNumeric {
			if n, err := x.Number(); err == nil {
				return floatCell(n)
			}
		}
		return x.Raw, true
	default:
		return v, true
	}
}

func floatCell(f float64) (any, bool) {
	switch {
	case math.IsNaN(f):
		return nil, false
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	}
	return f, true
}
