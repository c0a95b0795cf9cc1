package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonaycp/my-timesheet/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart_MondayAnchored(t *testing.T) {
	t.Parallel()

	start := day(2023, time.December, 1)
	for i := 0; i < 90; i++ {
		d := start.AddDate(0, 0, i)
		ws, ok := WeekStart(d)
		require.True(t, ok)
		assert.Equal(t, time.Monday, ws.Weekday(), "date %s", d)
		assert.False(t, ws.After(d), "week start after date %s", d)
		assert.True(t, d.Before(ws.AddDate(0, 0, 7)), "date %s outside its week", d)
	}
}

func TestWeekStart_StraddlesMonthAndYear(t *testing.T) {
	t.Parallel()

	ws, ok := WeekStart(day(2025, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.December, 30), ws)

	ws, _ = WeekStart(day(2024, time.June, 30))
	assert.Equal(t, day(2024, time.June, 24), ws)
}

func TestNullDatePropagates(t *testing.T) {
	t.Parallel()

	_, ok := WeekStart(time.Time{})
	assert.False(t, ok)
	_, ok = YearMonthOf(time.Time{})
	assert.False(t, ok)
}

func TestYearMonthOf(t *testing.T) {
	t.Parallel()

	ym, ok := YearMonthOf(day(2024, time.June, 3))
	require.True(t, ok)
	assert.Equal(t, model.YearMonth{Year: 2024, Month: time.June}, ym)
	assert.Equal(t, "2024-06", ym.String())
}

func TestLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jun 03 – Jun 09", WeekLabel(day(2024, time.June, 3)))
	assert.Equal(t, "Jun 24 – Jun 30", WeekLabel(day(2024, time.June, 24)))
	assert.Equal(t, "Dec 30 – Jan 05", WeekLabel(day(2024, time.December, 30)))
	assert.Equal(t, "Monday, Jun 03", DayLabel(day(2024, time.June, 3)))
}

func TestWeekRange(t *testing.T) {
	t.Parallel()

	today := day(2024, time.June, 6) // Thursday
	start, end := WeekRange(today, 0)
	assert.Equal(t, day(2024, time.June, 3), start)
	assert.Equal(t, day(2024, time.June, 10), end)

	start, end = WeekRange(today, 1)
	assert.Equal(t, day(2024, time.June, 10), start)
	assert.Equal(t, day(2024, time.June, 17), end)

	assert.True(t, InRange(day(2024, time.June, 16), start, end))
	assert.False(t, InRange(day(2024, time.June, 17), start, end))
}
