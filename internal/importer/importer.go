// Package importer loads the cadet roster from the unit's xlsx workbook.
// The workbook carries one worksheet per study year; each sheet has a
// header row followed by cadet rows.
package importer

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nccpresi/attendance-backend/internal/database"
)

// yearSheets are the worksheets read from the workbook, in import order.
// The sheet name doubles as the cadet's study year.
var yearSheets = []string{"3rd Year", "2nd Year", "1st Year"}

// Report summarizes one import run.
type Report struct {
	Imported int            // new cadets inserted
	Existing int            // rows whose enrollment id was already present
	Skipped  int            // rows without an enrollment id
	Sheets   map[string]int // rows processed per worksheet
}

// Import reads the workbook at path and inserts every cadet that is not
// in the store yet. Existing cadets are left untouched. onRow, when not
// nil, is called once per processed row.
func Import(ctx context.Context, path string, store database.CadetStore, onRow func()) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook %s: %w", path, err)
	}
	defer f.Close()

	report := &Report{Sheets: map[string]int{}}
	for _, sheet := range yearSheets {
		if err := importSheet(ctx, f, sheet, store, report, onRow); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func importSheet(ctx context.Context, f *excelize.File, sheet string, store database.CadetStore, report *Report, onRow func()) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("could not read worksheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	cols := map[string]int{}
	for i, header := range rows[0] {
		cols[normalizeHeader(header)] = i
	}

	cell := func(row []string, key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for _, row := range rows[1:] {
		report.Sheets[sheet]++
		if onRow != nil {
			onRow()
		}

		cadet := database.Cadet{
			EnrollmentID: cell(row, "enrollment id"),
			Rank:         cell(row, "rank"),
			Name:         cell(row, "name"),
			Year:         sheet,
			Department:   cell(row, "dept"),
			PURollNumber: cell(row, "pu roll number"),
			SDSW:         cell(row, "sd sw"),
			MobileNumber: cell(row, "mobile number"),
			Email:        cell(row, "email id"),
			DateOfBirth:  cell(row, "date of birth"),
			BloodGroup:   cell(row, "blood group"),
		}
		if cadet.EnrollmentID == "" {
			report.Skipped++
			continue
		}

		inserted, err := store.Upsert(ctx, cadet)
		if err != nil {
			return fmt.Errorf("could not import cadet %s: %w", cadet.EnrollmentID, err)
		}
		if inserted {
			report.Imported++
		} else {
			report.Existing++
		}
	}
	return nil
}
