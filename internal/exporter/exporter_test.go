package exporter

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/xuri/excelize/v2"

	"github.com/jonaycp/my-timesheet/internal/model"
)

func exportToBytes(t *testing.T, records []model.MatchRecord) []byte {
	t.Helper()
	f, err := Export(ExportOptions{Records: records})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()

	records := []model.MatchRecord{
		{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Weekday: "Mon", Place: "Clinic A", Shift: "Morning", CellText: "Magda AM"},
		{Date: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), Weekday: "Wed", Place: "2", Shift: "Night", CellText: "Bára +Magda"},
		{Weekday: "", Place: "Ward", Shift: "Day", CellText: "magdalena"},
	}

	got, err := ReadAssignments(bytes.NewReader(exportToBytes(t, records)))
	if err != nil {
		t.Fatalf("ReadAssignments failed: %v", err)
	}

	sortRecords := cmpopts.SortSlices(func(a, b model.MatchRecord) bool { return a.CellText < b.CellText })
	if diff := cmp.Diff(records, got, sortRecords); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_LayoutAndEmpty(t *testing.T) {
	t.Parallel()

	data := exportToBytes(t, nil)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets=%v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
	if diff := cmp.Diff(Header, rows[0]); diff != "" {
		t.Fatalf("header mismatch:\n%s", diff)
	}

	got, err := ReadAssignments(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAssignments failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestExport_ReportsProgress(t *testing.T) {
	t.Parallel()

	var last ProgressEvent
	f, err := Export(ExportOptions{Progress: func(p ProgressEvent) { last = p }})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	defer f.Close()
	if last.Percent != 100 {
		t.Fatalf("last progress=%+v", last)
	}
}

func TestReadAssignments_RejectsOtherWorkbooks(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	if _, err := ReadAssignments(buf); !errors.Is(err, ErrNotAssignments) {
		t.Fatalf("expected ErrNotAssignments, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	ym := model.YearMonth{Year: 2024, Month: time.June}
	if got := FileName("Magda", ym); got != "magda_2024-06_assignments.xlsx" {
		t.Fatalf("FileName=%q", got)
	}
	if got := FileName(" Bára Nová ", model.YearMonth{}); got != "bára_nová_all_assignments.xlsx" {
		t.Fatalf("FileName=%q", got)
	}
}
