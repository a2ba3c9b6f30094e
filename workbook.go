package eph

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

// Table is a named aggregate, as written to one CSV and one workbook sheet.
type Table struct {
	Output Output
	DF     *DF
}

// WriteWorkbook writes each table to its own sheet of the xlsx file fileName. Sheets are named after the
// tables, truncated to the limit of the format. Missing values are left blank.
func WriteWorkbook(fileName string, tables []Table) (err error) {
	if len(tables) == 0 {
		return fmt.Errorf("no tables for workbook %s", fileName)
	}

	wb := excelize.NewFile()
	defer func() { err = errors.Join(err, wb.Close()) }()

	const firstSheet = "Sheet1"

	used := make(map[string]bool)
	for _, t := range tables {
		name := sheetName(t.Output.Name, used)
		used[name] = true

		if _, e := wb.NewSheet(name); e != nil {
			return fmt.Errorf("sheet %s: %w", name, e)
		}

		if e := writeSheet(wb, name, t.DF); e != nil {
			return fmt.Errorf("sheet %s: %w", name, e)
		}
	}

	if !used[firstSheet] {
		if e := wb.DeleteSheet(firstSheet); e != nil {
			return e
		}
	}

	wb.SetActiveSheet(0)

	if dir := filepath.Dir(fileName); dir != "" {
		if e := os.MkdirAll(dir, 0o755); e != nil {
			return e
		}
	}

	return wb.SaveAs(fileName)
}

func writeSheet(wb *excelize.File, sheet string, df *DF) error {
	var header []any
	for _, cn := range df.ColumnNames() {
		header = append(header, cn)
	}

	if e := wb.SetSheetRow(sheet, "A1", &header); e != nil {
		return e
	}

	for row := 0; row < df.RowCount(); row++ {
		vals := df.Row(row)
		for ind, v := range vals {
			if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
				vals[ind] = nil
			}
		}

		cell, e := excelize.CoordinatesToCellName(1, row+2)
		if e != nil {
			return e
		}

		if e := wb.SetSheetRow(sheet, cell, &vals); e != nil {
			return e
		}
	}

	return nil
}

// sheetName truncates name to the sheet name limit, adding a numeric suffix if the result is taken.
func sheetName(name string, used map[string]bool) string {
	r := []rune(name)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}

	base := string(r)
	if !used[base] {
		return base
	}

	for ind := 2; ; ind++ {
		suffix := fmt.Sprintf("_%d", ind)
		b := []rune(base)
		if len(b)+len(suffix) > maxSheetName {
			b = b[:maxSheetName-len(suffix)]
		}

		if cand := string(b) + suffix; !used[cand] {
			return cand
		}
	}
}
