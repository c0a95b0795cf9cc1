package parser

import (
	"strings"

	"github.com/jonaycp/my-timesheet/internal/model"
)

// Extract 按列（从左到右）、行（从上到下）扫描文本单元格，
// 对包含 query 的单元格（忽略大小写的子串匹配）各产出一条记录。
// "magda" 会匹配 "Bára +Magda"、"MAGDA till 15" 以及 "magdalena"。
func Extract(table *model.NormalizedTable, query string) []model.MatchRecord {
	results := []model.MatchRecord{}
	q := strings.TrimSpace(query)
	if table == nil || q == "" {
		return results
	}

	folder := newFolder()
	needle := folder.String(q)

	for _, col := range table.Columns {
		place, shift, ok := SplitColumnID(col.ID)
		if !ok {
			continue
		}
		for i, cell := range col.Cells {
			if cell.Kind != model.CellText {
				continue
			}
			if !strings.Contains(folder.String(cell.Text), needle) {
				continue
			}
			rec := model.MatchRecord{
				Place:    place,
				Shift:    shift,
				CellText: strings.TrimSpace(cell.Text),
			}
			if i < len(table.Dates) {
				rec.Date = table.Dates[i]
			}
			if i < len(table.Weekdays) {
				rec.Weekday = table.Weekdays[i]
			}
			results = append(results, rec)
		}
	}

	return results
}
