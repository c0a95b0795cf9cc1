// Package importer 串联排班表处理流程：打开工作簿 -> 选择工作表 -> 规范化表头 -> 匹配 -> 筛选/分组
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonaycp/my-timesheet/internal/model"
	"github.com/jonaycp/my-timesheet/internal/parser"
	"github.com/jonaycp/my-timesheet/internal/service/excel"
	"github.com/jonaycp/my-timesheet/internal/source"
	"github.com/jonaycp/my-timesheet/internal/view"
)

// EmptyMessage 筛选后没有任何匹配时的提示
const EmptyMessage = "No matches found for the selected month (or in the file). Try another sheet or name."

// Coordinator 处理协调器
type Coordinator struct {
	logger         *zap.Logger
	normalize      parser.NormalizeOptions
	preferredSheet string
}

// NewCoordinator 创建处理协调器；logger 为 nil 时不输出日志
func NewCoordinator(logger *zap.Logger, opts parser.NormalizeOptions) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger, normalize: opts}
}

// SetPreferredSheet 未指定工作表时优先选择的工作表名
func (c *Coordinator) SetPreferredSheet(name string) {
	c.preferredSheet = name
}

func (c *Coordinator) open(src *source.Source) (*excel.Workbook, error) {
	wb, err := src.Open()
	if err != nil {
		return nil, err
	}
	wb.SetPreferred(c.preferredSheet)
	return wb, nil
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"` // start/sheet/matched/done
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Request 一次处理请求
type Request struct {
	Source   *source.Source
	Sheet    string // 为空时优先 "Směny"，否则第一个工作表
	Query    string
	View     view.Options
	Progress func(ProgressEvent)
}

// Result 处理结果
type Result struct {
	RunID        string
	SourceName   string
	Sheet        string
	Sheets       []string
	Query        string
	Matches      []model.MatchRecord // 整个工作表的匹配（列优先顺序）
	Records      []model.MatchRecord // 筛选并排序后的记录
	Month        model.YearMonth     // 生效月份；MonthAll 时为零值
	Months       []model.YearMonth   // 月份菜单（降序）
	DefaultMonth model.YearMonth
	View         *model.ViewModel
	Rows         []model.AssignmentRow
	Message      string
}

// Empty 筛选后是否没有记录
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Sheets 列出工作表名与默认选中的工作表
func (c *Coordinator) Sheets(src *source.Source) ([]string, string, error) {
	wb, err := c.open(src)
	if err != nil {
		return nil, "", err
	}
	defer wb.Close()
	return wb.SheetNames(), wb.PreferredSheet(), nil
}

// Process 执行完整处理流程。空结果不是错误，Message 会给出提示。
func (c *Coordinator) Process(ctx context.Context, req Request) (*Result, error) {
	if req.Source == nil {
		return nil, fmt.Errorf("no roster source")
	}
	runID := uuid.NewString()
	log := c.logger.With(zap.String("run_id", runID), zap.String("source", req.Source.Name))
	startTime := time.Now()

	c.sendProgress(req.Progress, "start", fmt.Sprintf("Opening %s", req.Source.Name))

	wb, err := c.open(req.Source)
	if err != nil {
		log.Warn("open workbook failed", zap.Error(err))
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.ResolveSheet(req.Sheet)
	if err != nil {
		return nil, err
	}
	c.sendProgress(req.Progress, "sheet", fmt.Sprintf("Reading sheet %s", sheet))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid, err := wb.Grid(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	table, err := parser.Normalize(grid, c.normalize)
	if err != nil {
		log.Warn("roster format error", zap.String("sheet", sheet), zap.Error(err))
		return nil, err
	}

	matches := parser.Extract(table, req.Query)
	c.sendProgress(req.Progress, "matched", fmt.Sprintf("Matched %d cells", len(matches)))

	result := &Result{
		RunID:      runID,
		SourceName: req.Source.Name,
		Sheet:      sheet,
		Sheets:     wb.SheetNames(),
		Query:      req.Query,
		Matches:    matches,
	}
	c.assemble(result, req.View)

	log.Info("roster processed",
		zap.String("sheet", sheet),
		zap.Int("columns", len(table.Columns)),
		zap.Int("rows", table.Len()),
		zap.Int("matches", len(matches)),
		zap.Int("records", len(result.Records)),
		zap.Stringer("month", result.Month),
		zap.Duration("duration", time.Since(startTime)),
	)
	c.sendProgress(req.Progress, "done", result.Message)
	return result, nil
}

// assemble 月份菜单、筛选、排序、分组与提示
func (c *Coordinator) assemble(result *Result, opts view.Options) {
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
		opts.Today = today
	}

	result.Months, result.DefaultMonth, _ = view.MonthMenu(result.Matches, today)

	filtered, month := view.Filter(result.Matches, opts)
	result.Month = month
	result.Records = view.Sort(filtered, opts.Order)
	result.View = view.Group(result.Records, opts.Order)
	result.Rows = view.Rows(result.Records, opts.Order)
	result.Message = Message(len(result.Records), result.Query, month)
}

// Message 结果提示文案
func Message(count int, query string, month model.YearMonth) string {
	if count == 0 {
		return EmptyMessage
	}
	scope := "all months"
	if !month.IsZero() {
		scope = month.String()
	}
	return fmt.Sprintf("Found %d assignments for %s in %s.", count, query, scope)
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(progress func(ProgressEvent), typ, message string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Type: typ, Message: message, Timestamp: time.Now()})
}

