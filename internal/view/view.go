// Package view 将匹配记录按月份/周筛选并组装为分组视图
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/jonaycp/my-timesheet/internal/calendar"
	"github.com/jonaycp/my-timesheet/internal/model"
)

// MonthMenu 返回记录中出现的所有年月（降序）以及默认选中项：
// 当前自然月存在时选当前月，否则选最新月。没有带日期的记录时 ok 为 false。
func MonthMenu(records []model.MatchRecord, today time.Time) (keys []model.YearMonth, def model.YearMonth, ok bool) {
	seen := make(map[model.YearMonth]bool)
	for _, r := range records {
		if ym, has := calendar.YearMonthOf(r.Date); has && !seen[ym] {
			seen[ym] = true
			keys = append(keys, ym)
		}
	}
	if len(keys) == 0 {
		return []model.YearMonth{}, model.YearMonth{}, false
	}

	sort.Slice(keys, func(i, j int) bool { return keys[j].Less(keys[i]) })

	current, _ := calendar.YearMonthOf(calendar.Day(today))
	if seen[current] {
		return keys, current, true
	}
	return keys, keys[0], true
}

// LatestMonth 记录中最大的年月
func LatestMonth(records []model.MatchRecord) (model.YearMonth, bool) {
	var latest model.YearMonth
	found := false
	for _, r := range records {
		ym, ok := calendar.YearMonthOf(r.Date)
		if !ok {
			continue
		}
		if !found || latest.Less(ym) {
			latest = ym
			found = true
		}
	}
	return latest, found
}

// Filter 按选项筛选记录，返回保留的记录（保持输入顺序）与生效的月份。
// 日期为空的记录总是被剔除；MonthAll 时返回的月份为零值。
func Filter(records []model.MatchRecord, opts Options) ([]model.MatchRecord, model.YearMonth) {
	var month model.YearMonth
	filterMonth := false

	switch opts.Month {
	case MonthAll:
	case MonthSelected:
		month = opts.Selected
		if month.IsZero() {
			_, month, _ = MonthMenu(records, opts.today())
		}
		filterMonth = true
	default:
		month, _ = LatestMonth(records)
		filterMonth = true
	}

	var start, end time.Time
	filterWeek := false
	switch opts.Focus {
	case FocusThisWeek:
		start, end = calendar.WeekRange(opts.today(), 0)
		filterWeek = true
	case FocusNextWeek:
		start, end = calendar.WeekRange(opts.today(), 1)
		filterWeek = true
	}

	out := make([]model.MatchRecord, 0, len(records))
	for _, r := range records {
		ym, ok := calendar.YearMonthOf(r.Date)
		if !ok {
			continue
		}
		if filterMonth && ym != month {
			continue
		}
		if filterWeek && !calendar.InRange(r.Date, start, end) {
			continue
		}
		out = append(out, r)
	}
	return out, month
}

// Sort 按 (日期, 地点, 班次) 稳定排序，OrderDesc 时全部键倒序。
// 记录必须都带日期。
func Sort(records []model.MatchRecord, order Order) []model.MatchRecord {
	sorted := make([]model.MatchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := compareRecords(sorted[i], sorted[j])
		if order == OrderDesc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func compareRecords(a, b model.MatchRecord) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := strings.Compare(a.Place, b.Place); c != 0 {
		return c
	}
	return strings.Compare(a.Shift, b.Shift)
}

// Group 将已筛选的记录分组为 周 -> 天 -> 条目，并统计汇总数
func Group(records []model.MatchRecord, order Order) *model.ViewModel {
	vm := &model.ViewModel{Weeks: []model.WeekGroup{}}
	days := make(map[time.Time]bool)
	places := make(map[string]bool)

	for _, r := range Sort(records, order) {
		if !r.HasDate() {
			continue
		}
		ws, _ := calendar.WeekStart(r.Date)
		if n := len(vm.Weeks); n == 0 || !vm.Weeks[n-1].Start.Equal(ws) {
			vm.Weeks = append(vm.Weeks, model.WeekGroup{
				Start: ws,
				Label: calendar.WeekLabel(ws),
				Days:  []model.DayGroup{},
			})
		}
		week := &vm.Weeks[len(vm.Weeks)-1]

		d := calendar.Day(r.Date)
		if n := len(week.Days); n == 0 || !week.Days[n-1].Date.Equal(d) {
			week.Days = append(week.Days, model.DayGroup{
				Date:    d,
				Label:   calendar.DayLabel(d),
				Entries: []model.Entry{},
			})
		}
		dg := &week.Days[len(week.Days)-1]
		dg.Entries = append(dg.Entries, model.Entry{
			Place:    r.Place,
			Shift:    r.Shift,
			CellText: r.CellText,
		})

		days[d] = true
		places[r.Place] = true
		vm.TotalEntries++
	}

	vm.DistinctDays = len(days)
	vm.DistinctPlaces = len(places)
	return vm
}

// Assemble 筛选并组装视图；筛选后为空时返回空视图（不是错误）
func Assemble(records []model.MatchRecord, opts Options) *model.ViewModel {
	filtered, _ := Filter(records, opts)
	return Group(filtered, opts.Order)
}

// Rows 扁平导出表，按 (日期, 地点, 班次) 排序
func Rows(records []model.MatchRecord, order Order) []model.AssignmentRow {
	sorted := Sort(records, order)
	rows := make([]model.AssignmentRow, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, r.ToRow())
	}
	return rows
}
