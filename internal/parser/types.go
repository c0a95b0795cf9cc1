package parser

import (
	"errors"
	"fmt"
)

const (
	// MinRows 两行表头 + 至少一行数据
	MinRows = 3
	// MinCols 日期列 + 星期列
	MinCols = 2

	// ColumnSeparator 组合列标识中地点与班次的分隔符
	ColumnSeparator = " | "

	// DefaultMissingLabel 表头左侧无可继承值时使用的标签（沿用 pandas 的 "nan" 字符串化）
	DefaultMissingLabel = "nan"

	// DateColumn / WeekdayColumn 前两列的名称
	DateColumn    = "Date"
	WeekdayColumn = "Weekday"
)

// ErrFormat 表格结构不符合排班表要求
var ErrFormat = errors.New("roster format error")

// FormatError 表格过小
type FormatError struct {
	Rows int
	Cols int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf(
		"roster format: need at least %d rows (2 header rows + 1 data row) and %d columns (date, weekday), got %d rows x %d columns",
		MinRows, MinCols, e.Rows, e.Cols,
	)
}

// Unwrap 支持 errors.Is(err, ErrFormat)
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// NormalizeOptions 表头规范化选项
type NormalizeOptions struct {
	// MissingLabel 前导空白表头的替代文本，可以为空字符串
	MissingLabel string
}

// DefaultNormalizeOptions 默认选项
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MissingLabel: DefaultMissingLabel}
}
