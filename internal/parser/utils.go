package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"

	"github.com/jonaycp/my-timesheet/internal/model"
)

// Excel 日期序列号的合理范围（1900-01-01 ~ 9999-12-31）
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// dateLayouts 文本日期的候选格式，按顺序尝试
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2.1.2006",
	"2. 1. 2006",
	"2.1.06",
	"1/2/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// CoerceDate 宽松的日期转换，无法解析时返回 false（不报错）
func CoerceDate(c model.Cell) (time.Time, bool) {
	switch c.Kind {
	case model.CellNumber:
		return serialToDate(c.Number)
	case model.CellText:
		return parseDateText(c.Text)
	default:
		return time.Time{}, false
	}
}

func serialToDate(serial float64) (time.Time, bool) {
	if serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return TruncateDay(t), true
}

func parseDateText(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateDay(t), true
		}
	}
	// 文本形式的序列号（.xls 读取时常见）
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToDate(n)
	}
	return time.Time{}, false
}

// TruncateDay 截断到自然日（UTC 零点）
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ForwardFill 表头向右填充：空单元格继承左侧最近的非空标签
// 左侧没有可继承值时使用 missing
func ForwardFill(cells []model.Cell, width int, missing string) []string {
	out := make([]string, width)
	last := missing
	for i := 0; i < width; i++ {
		if i < len(cells) && !cells[i].IsBlank() {
			last = cells[i].String()
		}
		out[i] = last
	}
	return out
}

// ComposeColumnID 生成组合列标识 "地点 | 班次"
func ComposeColumnID(place, shift string) string {
	return place + ColumnSeparator + shift
}

// SplitColumnID 拆分组合列标识，缺少分隔符时返回 false
func SplitColumnID(id string) (place, shift string, ok bool) {
	if !strings.Contains(id, ColumnSeparator) {
		return "", "", false
	}
	place, shift, _ = strings.Cut(id, "|")
	return strings.TrimSpace(place), strings.TrimSpace(shift), true
}

// newFolder 大小写折叠器（非并发安全，每次调用新建）
func newFolder() cases.Caser {
	return cases.Fold()
}
