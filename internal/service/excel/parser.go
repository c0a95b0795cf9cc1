package excel

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/jonaycp/my-timesheet/internal/model"
)

// PreferredSheetName 排班表约定的工作表名
const PreferredSheetName = "Směny"

// Format 工作簿格式
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	// ErrUnsupportedFormat 无法识别的文件格式
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	// ErrSheetNotFound 指定的工作表不存在
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrNoSheets 工作簿中没有工作表
	ErrNoSheets = errors.New("workbook has no sheets")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Workbook 已加载的排班工作簿（只读）
type Workbook struct {
	id     string
	format Format
	xlsx   *excelize.File
	xls    *xls.WorkBook
	sheets []string

	preferred string
}

// DetectFormat 根据文件名和内容判断格式
func DetectFormat(filename string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// Open 从内存加载工作簿
func Open(filename string, data []byte) (*Workbook, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{
		id:     uuid.New().String(),
		format: format,
	}

	switch format {
	case FormatXLS:
		file, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("failed to open xls: %w", err)
		}
		wb.xls = file
		for i := 0; i < file.NumSheets(); i++ {
			if sheet := file.GetSheet(i); sheet != nil {
				wb.sheets = append(wb.sheets, sheet.Name)
			}
		}
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open excel: %w", err)
		}
		wb.xlsx = file
		wb.sheets = file.GetSheetList()
	}

	if len(wb.sheets) == 0 {
		_ = wb.Close()
		return nil, ErrNoSheets
	}
	return wb, nil
}

// FromFile 包装已打开的 excelize 工作簿（测试与导出回读使用）
func FromFile(file *excelize.File) *Workbook {
	return &Workbook{
		id:     uuid.New().String(),
		format: FormatXLSX,
		xlsx:   file,
		sheets: file.GetSheetList(),
	}
}

// ID 本次加载的标识
func (w *Workbook) ID() string {
	return w.id
}

// Format 工作簿格式
func (w *Workbook) Format() Format {
	return w.format
}

// SheetNames 工作表列表（原始顺序）
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// SetPreferred 修改首选工作表名；为空时恢复为 "Směny"
func (w *Workbook) SetPreferred(name string) {
	w.preferred = strings.TrimSpace(name)
}

// PreferredSheet 存在首选工作表（默认 "Směny"）时优先使用，否则取第一个工作表
func (w *Workbook) PreferredSheet() string {
	preferred := w.preferred
	if preferred == "" {
		preferred = PreferredSheetName
	}
	for _, name := range w.sheets {
		if sameSheetName(name, preferred) {
			return name
		}
	}
	if len(w.sheets) == 0 {
		return ""
	}
	return w.sheets[0]
}

// ResolveSheet 指定了工作表时校验其存在，否则返回首选工作表
func (w *Workbook) ResolveSheet(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return w.PreferredSheet(), nil
	}
	for _, name := range w.sheets {
		if sameSheetName(name, requested) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSheetNotFound, requested)
}

// sameSheetName 工作表名比较（统一 Unicode 组合形式）
func sameSheetName(a, b string) bool {
	return norm.NFC.String(strings.TrimSpace(a)) == norm.NFC.String(strings.TrimSpace(b))
}

// Grid 读取工作表为原始表格
func (w *Workbook) Grid(sheet string) (model.RawGrid, error) {
	name, err := w.ResolveSheet(sheet)
	if err != nil {
		return nil, err
	}
	if w.format == FormatXLS {
		return w.xlsGrid(name)
	}
	return w.xlsxGrid(name)
}

func (w *Workbook) xlsxGrid(sheet string) (model.RawGrid, error) {
	rows, err := w.xlsx.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	grid := make(model.RawGrid, len(rows))
	for r, row := range rows {
		cells := make([]model.Cell, len(row))
		for c, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := w.xlsx.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s!%s: %w", sheet, axis, err)
			}
			cells[c] = classifyXLSX(typ, value)
		}
		grid[r] = cells
	}
	return grid, nil
}

func classifyXLSX(typ excelize.CellType, value string) model.Cell {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeDate:
		return model.TextCell(value)
	case excelize.CellTypeBool:
		return model.Cell{Kind: model.CellBool, Text: value}
	case excelize.CellTypeError:
		return model.Cell{}
	}
	return classifyValue(value)
}

// classifyValue 数值优先，其余作为文本
func classifyValue(value string) model.Cell {
	if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return model.NumberCell(n)
	}
	return model.TextCell(value)
}

func (w *Workbook) xlsGrid(sheet string) (model.RawGrid, error) {
	var ws *xls.WorkSheet
	for i := 0; i < w.xls.NumSheets(); i++ {
		if s := w.xls.GetSheet(i); s != nil && s.Name == sheet {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	grid := make(model.RawGrid, 0, int(ws.MaxRow)+1)
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := ws.Row(r)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]model.Cell, row.LastCol())
		for c := range cells {
			value := row.Col(c)
			if strings.TrimSpace(value) == "" {
				continue
			}
			cells[c] = classifyValue(value)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// Close 释放资源
func (w *Workbook) Close() error {
	if w.xlsx != nil {
		return w.xlsx.Close()
	}
	return nil
}
