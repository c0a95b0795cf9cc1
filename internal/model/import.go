package model

import (
	"fmt"
	"time"
)

// DateLayout 导出/接口使用的日期格式
const DateLayout = "2006-01-02"

// MatchRecord 一条匹配到的排班记录
type MatchRecord struct {
	Date     time.Time // 零值表示日期缺失
	Weekday  string
	Place    string
	Shift    string
	CellText string
}

// HasDate 日期是否有效
func (r MatchRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// AssignmentRow 扁平导出行
type AssignmentRow struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Place    string `json:"place"`
	Shift    string `json:"shift"`
	CellText string `json:"cellText"`
}

// ToRow 转换为导出行
func (r MatchRecord) ToRow() AssignmentRow {
	date := ""
	if r.HasDate() {
		date = r.Date.Format(DateLayout)
	}
	return AssignmentRow{
		Date:     date,
		Weekday:  r.Weekday,
		Place:    r.Place,
		Shift:    r.Shift,
		CellText: r.CellText,
	}
}

// YearMonth 年月分组键
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// String 形如 2024-06
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Less 是否早于 other
func (ym YearMonth) Less(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// IsZero 是否未设置
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// MarshalText 以 2024-06 形式序列化
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

// UnmarshalText 解析 2024-06
func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// ParseYearMonth 解析 "2024-06" / "2024-6"
func ParseYearMonth(s string) (YearMonth, error) {
	var y, m int
	if _, err := fmt.Sscanf(s, "%d-%d", &y, &m); err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	if y <= 0 || m < 1 || m > 12 {
		return YearMonth{}, fmt.Errorf("invalid year-month %q", s)
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}
