// Package calendar 提供记录日期的年月、周分桶
package calendar

import (
	"fmt"
	"time"

	"github.com/jonaycp/my-timesheet/internal/model"
)

// YearMonthOf 日期所在年月，日期为空时返回 false
func YearMonthOf(t time.Time) (model.YearMonth, bool) {
	if t.IsZero() {
		return model.YearMonth{}, false
	}
	return model.YearMonth{Year: t.Year(), Month: t.Month()}, true
}

// WeekdayIndex 周一为 0，周日为 6
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekStart 日期所在周的周一（含当天），日期为空时返回 false
// 周不按月份截断，跨月的周归属于其周一
func WeekStart(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	day := Day(t)
	return day.AddDate(0, 0, -WeekdayIndex(day)), true
}

// Day 日期部分（UTC 零点），与解析出的记录日期可直接比较
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekLabel 形如 "Jun 03 – Jun 09"
func WeekLabel(start time.Time) string {
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s – %s", start.Format("Jan 02"), end.Format("Jan 02"))
}

// DayLabel 形如 "Monday, Jun 03"
func DayLabel(t time.Time) string {
	return t.Format("Monday, Jan 02")
}

// WeekRange 以 today 所在周为基准偏移 offset 周，返回 [start, end)
func WeekRange(today time.Time, offset int) (start, end time.Time) {
	start, _ = WeekStart(today)
	start = start.AddDate(0, 0, 7*offset)
	return start, start.AddDate(0, 0, 7)
}

// InRange start <= t < end
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
