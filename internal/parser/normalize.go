package parser

import (
	"strings"
	"time"

	"github.com/jonaycp/my-timesheet/internal/model"
)

// Normalize 将两行表头的原始表格转换为规范化排班表
//
// 第 0 行为地点、第 1 行为班次，各自向右填充后组合为 "地点 | 班次" 列标识；
// 第 0 列为日期（宽松解析，失败为零值），第 1 列为星期。
func Normalize(grid model.RawGrid, opts NormalizeOptions) (*model.NormalizedTable, error) {
	width := grid.Width()
	if len(grid) < MinRows || width < MinCols {
		return nil, &FormatError{Rows: len(grid), Cols: width}
	}

	places := ForwardFill(grid[0], width, opts.MissingLabel)
	shifts := ForwardFill(grid[1], width, opts.MissingLabel)

	dataRows := len(grid) - 2
	table := &model.NormalizedTable{
		Dates:    make([]time.Time, dataRows),
		Weekdays: make([]string, dataRows),
		Columns:  make([]model.Column, 0, width-MinCols),
	}

	for i := 0; i < dataRows; i++ {
		r := i + 2
		if d, ok := CoerceDate(grid.At(r, 0)); ok {
			table.Dates[i] = d
		}
		table.Weekdays[i] = strings.TrimSpace(grid.At(r, 1).String())
	}

	for c := MinCols; c < width; c++ {
		col := model.Column{
			ID:    ComposeColumnID(places[c], shifts[c]),
			Cells: make([]model.Cell, dataRows),
		}
		for i := 0; i < dataRows; i++ {
			col.Cells[i] = grid.At(i+2, c)
		}
		table.Columns = append(table.Columns, col)
	}

	return table, nil
}
