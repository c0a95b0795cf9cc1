package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jonaycp/my-timesheet/internal/model"
)

func textRow(values ...string) []model.Cell {
	row := make([]model.Cell, len(values))
	for i, v := range values {
		row[i] = model.TextCell(v)
	}
	return row
}

func TestNormalize_CompositeColumns(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		textRow("", "", "Clinic A", "", "Clinic B"),
		textRow("", "", "Morning", "Night", ""),
		textRow("2024-06-03", "Mon", "Magda AM", "", "x"),
	}

	table, err := Normalize(grid, DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := []string{"Clinic A | Morning", "Clinic A | Night", "Clinic B | Night"}
	if diff := cmp.Diff(want, table.ColumnIDs()); diff != "" {
		t.Fatalf("column ids mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 1 {
		t.Fatalf("rows=%d want 1", table.Len())
	}
	if got := table.Dates[0]; !got.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date=%v", got)
	}
	if table.Weekdays[0] != "Mon" {
		t.Fatalf("weekday=%q", table.Weekdays[0])
	}
}

func TestNormalize_LeadingBlankLabelUsesMarker(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		textRow("", "", "", "Ward"),
		textRow("", "", "Day", ""),
		textRow("2024-06-03", "Mon", "a", "b"),
	}

	table, err := Normalize(grid, DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if diff := cmp.Diff([]string{"nan | Day", "Ward | Day"}, table.ColumnIDs()); diff != "" {
		t.Fatalf("column ids mismatch (-want +got):\n%s", diff)
	}

	table, err = Normalize(grid, NormalizeOptions{MissingLabel: ""})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := table.ColumnIDs()[0]; got != " | Day" {
		t.Fatalf("empty marker id=%q", got)
	}
}

func TestNormalize_TooSmall(t *testing.T) {
	t.Parallel()

	grids := map[string]model.RawGrid{
		"empty":     nil,
		"two rows":  {textRow("", "", "A"), textRow("", "", "B")},
		"one col":   {textRow("x"), textRow("y"), textRow("2024-06-03")},
		"zero cols": {{}, {}, {}},
	}
	for name, grid := range grids {
		_, err := Normalize(grid, DefaultNormalizeOptions())
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("%s: expected FormatError, got %v", name, err)
		}
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("%s: expected errors.Is ErrFormat", name)
		}
	}
}

func TestNormalize_MinimalShape(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{textRow("", ""), textRow("", ""), textRow("bad date", "Tue")}
	table, err := Normalize(grid, DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(table.Columns) != 0 {
		t.Fatalf("expected no assignment columns, got %v", table.ColumnIDs())
	}
	if !table.Dates[0].IsZero() {
		t.Fatalf("unparseable date must be zero, got %v", table.Dates[0])
	}
}

func TestNormalize_RaggedRows(t *testing.T) {
	t.Parallel()

	grid := model.RawGrid{
		textRow("", "", "A", "B"),
		textRow("", "", "Day"),
		textRow("2024-06-03"),
		textRow("2024-06-04", "Tue", "", "Magda"),
	}
	table, err := Normalize(grid, DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if diff := cmp.Diff([]string{"A | Day", "B | Day"}, table.ColumnIDs()); diff != "" {
		t.Fatalf("column ids mismatch (-want +got):\n%s", diff)
	}
	if got := table.Columns[1].Cells[1].Text; got != "Magda" {
		t.Fatalf("cell=%q", got)
	}
	if !table.Columns[1].Cells[0].IsBlank() {
		t.Fatalf("missing cell must be blank")
	}
}
