package model

import (
	"strconv"
	"strings"
	"time"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellBlank  CellKind = iota // 空单元格
	CellText                   // 文本
	CellNumber                 // 数值（含 Excel 日期序列号）
	CellBool                   // 布尔
)

// Cell 原始单元格
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell 构造文本单元格，空白文本视为空单元格
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellBlank}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell 构造数值单元格
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n, Text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// IsBlank 是否为空
func (c Cell) IsBlank() bool {
	return c.Kind == CellBlank
}

// String 单元格的文本表示
func (c Cell) String() string {
	switch c.Kind {
	case CellBlank:
		return ""
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return c.Text
	}
}

// RawGrid 原始表格（尚无表头语义），行可以不等长
type RawGrid [][]Cell

// At 取单元格，越界返回空单元格
func (g RawGrid) At(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Cell{}
	}
	return g[row][col]
}

// Width 最宽行的列数
func (g RawGrid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Column 规范化后的一列（地点 | 班次）
type Column struct {
	ID    string `json:"id"`
	Cells []Cell `json:"-"`
}

// NormalizedTable 规范化后的排班表
// Dates 中的零值表示该行日期无法解析
type NormalizedTable struct {
	Dates    []time.Time
	Weekdays []string
	Columns  []Column
}

// Len 数据行数
func (t *NormalizedTable) Len() int {
	return len(t.Dates)
}

// ColumnIDs 按原始顺序返回列标识
func (t *NormalizedTable) ColumnIDs() []string {
	ids := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		ids = append(ids, c.ID)
	}
	return ids
}
