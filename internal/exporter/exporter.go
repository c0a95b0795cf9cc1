package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonaycp/my-timesheet/internal/model"
	"github.com/jonaycp/my-timesheet/internal/parser"
	"github.com/jonaycp/my-timesheet/internal/service/excel"
)

// SheetName 导出工作表名
const SheetName = "Assignments"

// ContentType xlsx MIME
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header 导出表头（与记录字段一一对应）
var Header = []string{"Date", "Weekday", "Place", "Shift", "CellText"}

// ErrNotAssignments 读取的工作簿不是导出格式
var ErrNotAssignments = errors.New("workbook is not an assignments export")

// ExportOptions 导出选项
type ExportOptions struct {
	Records  []model.MatchRecord // 已筛选、已排序
	Progress func(ProgressEvent)
}

// Export 生成单工作表的 xlsx：日期为真实日期单元格，空日期留空
func Export(opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if defaultSheet != "" && defaultSheet != SheetName {
		_ = f.DeleteSheet(defaultSheet)
	}

	if err := writeRows(f, opts); err != nil {
		_ = f.Close()
		return nil, err
	}
	reportProgress(opts.Progress, 100, "done")
	return f, nil
}

func writeRows(f *excelize.File, opts ExportOptions) error {
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", headerStyle); err != nil {
		return err
	}

	total := len(opts.Records)
	for i, r := range opts.Records {
		rowNum := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		row := []interface{}{nil, r.Weekday, r.Place, r.Shift, r.CellText}
		if r.HasDate() {
			row[0] = r.Date
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
		if r.HasDate() {
			if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
				return err
			}
		}
		if total > 0 && (i+1)%50 == 0 {
			reportProgress(opts.Progress, (i+1)*100/total, "rows")
		}
	}

	widths := map[string]float64{"A": 12, "B": 10, "C": 24, "D": 16, "E": 32}
	for col, w := range widths {
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// FileName 下载文件名：{查询名小写}_{年月}_assignments.xlsx
func FileName(query string, month model.YearMonth) string {
	name := strings.ToLower(strings.TrimSpace(query))
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		name = "roster"
	}
	ym := "all"
	if !month.IsZero() {
		ym = month.String()
	}
	return fmt.Sprintf("%s_%s_assignments.xlsx", name, ym)
}

// ReadAssignments 读回导出的工作簿
func ReadAssignments(r io.Reader) ([]model.MatchRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	wb := excel.FromFile(f)
	defer wb.Close()

	grid, err := wb.Grid(SheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAssignments, err)
	}
	if len(grid) == 0 {
		return nil, ErrNotAssignments
	}
	for i, h := range Header {
		if strings.TrimSpace(grid.At(0, i).String()) != h {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrNotAssignments, i+1, grid.At(0, i).String(), h)
		}
	}

	records := make([]model.MatchRecord, 0, len(grid)-1)
	for r := 1; r < len(grid); r++ {
		rec := model.MatchRecord{
			Weekday:  grid.At(r, 1).String(),
			Place:    grid.At(r, 2).String(),
			Shift:    grid.At(r, 3).String(),
			CellText: grid.At(r, 4).String(),
		}
		if d, ok := parser.CoerceDate(grid.At(r, 0)); ok {
			rec.Date = d
		}
		records = append(records, rec)
	}
	return records, nil
}
