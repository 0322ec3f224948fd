package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nccpresi/attendance-backend/internal/database"
	"github.com/nccpresi/attendance-backend/internal/database/mock"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for sheet, rows := range sheets {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				t.Fatal(err)
			}
		}
	}
	_ = f.DeleteSheet("Sheet1")

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func emptySheets() map[string][][]string {
	return map[string][][]string{
		"3rd Year": nil,
		"2nd Year": nil,
		"1st Year": nil,
	}
}

func TestImport(t *testing.T) {
	sheets := emptySheets()
	sheets["3rd Year"] = [][]string{
		{"Enrollment ID", "Name", "Rank", "Dept", "PU Roll Number", "SD/SW", "Mobile Number", "Email ID", "Date of Birth", "Blood Group"},
		{"EN-001", "Alpha", "SUO", "CSE", "PU-1", "SD", "9000000001", "alpha@example.com", "2004-01-01", "O+"},
		{"EN-002", "Bravo", "CDT", "ECE", "PU-2", "SW", "9000000002", "bravo@example.com", "2004-02-02", "A+"},
	}
	sheets["1st Year"] = [][]string{
		{"Enrollment ID", "Name"},
		{"EN-101", "Charlie"},
		{"", "NoEnrollment"},
	}

	store := mock.NewCadetStore()
	rows := 0
	report, err := Import(context.Background(), writeWorkbook(t, sheets), store, func() { rows++ })
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report.Imported != 3 {
		t.Errorf("expected 3 imported cadets, got %d", report.Imported)
	}
	if report.Skipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", report.Skipped)
	}
	if rows != 4 {
		t.Errorf("expected 4 progress callbacks, got %d", rows)
	}

	alpha, err := store.Get(context.Background(), "EN-001")
	if err != nil {
		t.Fatal(err)
	}
	if alpha == nil {
		t.Fatal("EN-001 not imported")
	}
	if alpha.Name != "Alpha" || alpha.Year != "3rd Year" || alpha.SDSW != "SD" {
		t.Errorf("unexpected cadet: %+v", alpha)
	}
	if alpha.Email != "alpha@example.com" || alpha.BloodGroup != "O+" {
		t.Errorf("optional attributes not mapped: %+v", alpha)
	}

	charlie, err := store.Get(context.Background(), "EN-101")
	if err != nil {
		t.Fatal(err)
	}
	if charlie == nil || charlie.Year != "1st Year" {
		t.Errorf("sheet name should set the study year: %+v", charlie)
	}
}

func TestImportLeavesExistingCadets(t *testing.T) {
	sheets := emptySheets()
	sheets["2nd Year"] = [][]string{
		{"Enrollment ID", "Name"},
		{"EN-001", "Renamed"},
	}

	store := mock.NewCadetStore()
	existing := database.Cadet{EnrollmentID: "EN-001", Name: "Original", Year: "2nd Year"}
	if _, err := store.Upsert(context.Background(), existing); err != nil {
		t.Fatal(err)
	}

	report, err := Import(context.Background(), writeWorkbook(t, sheets), store, nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if report.Imported != 0 || report.Existing != 1 {
		t.Errorf("unexpected report: %+v", report)
	}

	cadet, err := store.Get(context.Background(), "EN-001")
	if err != nil {
		t.Fatal(err)
	}
	if cadet.Name != "Original" {
		t.Errorf("existing cadet must stay untouched, got %q", cadet.Name)
	}
}

func TestImportMissingWorkbook(t *testing.T) {
	if _, err := Import(context.Background(), "/does/not/exist.xlsx", mock.NewCadetStore(), nil); err == nil {
		t.Error("expected error for missing workbook")
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Enrollment ID", "enrollment id"},
		{"  SD/SW  ", "sd sw"},
		{"Sd / Sw", "sd sw"},
		{"PU Roll Number", "pu roll number"},
		{"Émail ID", "email id"},
	}

	for _, tt := range tests {
		if got := normalizeHeader(tt.header); got != tt.expected {
			t.Errorf("normalizeHeader(%q) = %q, expected %q", tt.header, got, tt.expected)
		}
	}
}
