package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonaycp/my-timesheet/internal/exporter"
	"github.com/jonaycp/my-timesheet/internal/importer"
	"github.com/jonaycp/my-timesheet/internal/model"
	"github.com/jonaycp/my-timesheet/internal/parser"
	"github.com/jonaycp/my-timesheet/internal/service/excel"
	"github.com/jonaycp/my-timesheet/internal/source"
	"github.com/jonaycp/my-timesheet/internal/view"
)

var errNoSource = errors.New("upload a file or provide a link")

// processForm 处理请求的表单字段（multipart 或 urlencoded）
type processForm struct {
	Link        string `form:"link"`
	UseLastLink bool   `form:"useLastLink"`
	Query       string `form:"query"`
	Sheet       string `form:"sheet"`
	Mode        string `form:"mode"`
	Month       string `form:"month"`
	Focus       string `form:"focus"`
	Order       string `form:"order"`
}

// ProcessResponse 处理结果
type ProcessResponse struct {
	Message      string                `json:"message"`
	Sheet        string                `json:"sheet"`
	Sheets       []string              `json:"sheets"`
	Query        string                `json:"query"`
	YearMonth    string                `json:"yearMonth"`
	Months       []model.YearMonth     `json:"months"`
	DefaultMonth string                `json:"defaultMonth"`
	View         *model.ViewModel      `json:"view"`
	Rows         []model.AssignmentRow `json:"rows"`
	ExportURL    string                `json:"exportUrl,omitempty"`
}

// SheetsResponse 工作表列表
type SheetsResponse struct {
	Sheets    []string `json:"sheets"`
	Preferred string   `json:"preferred"`
}

type exportDownload struct {
	filePath string
	fileName string
}

// ListSheets 列出上传文件（或链接）的工作表
// POST /api/roster/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	var form processForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	src, err := h.readSource(c, form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	names, preferred, err := h.coordinator.Sheets(src)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SheetsResponse{Sheets: names, Preferred: preferred})
}

// Process 解析排班表并返回分组视图与导出地址
// POST /api/roster/process
func (h *Handler) Process(c *gin.Context) {
	var form processForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	result, err := h.process(c, form)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := ProcessResponse{
		Message:   result.Message,
		Sheet:     result.Sheet,
		Sheets:    result.Sheets,
		Query:     result.Query,
		YearMonth: monthString(result.Month),
		Months:    result.Months,
		View:      result.View,
		Rows:      result.Rows,
	}
	resp.DefaultMonth = monthString(result.DefaultMonth)

	if !result.Empty() {
		token, err := h.storeExport(result)
		if err != nil {
			h.logger.Error("export failed", zap.String("run_id", result.RunID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		resp.ExportURL = downloadURL(c, token)
	}
	c.JSON(http.StatusOK, resp)
}

// process 读取来源、解析视图选项并运行处理流程
func (h *Handler) process(c *gin.Context, form processForm) (*importer.Result, error) {
	opts, err := h.viewOptions(form)
	if err != nil {
		return nil, err
	}
	src, err := h.readSource(c, form)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(form.Query)
	if query == "" {
		query = h.defaults.Query
	}
	return h.coordinator.Process(c.Request.Context(), importer.Request{
		Source: src,
		Sheet:  form.Sheet,
		Query:  query,
		View:   opts,
	})
}

// viewOptions 表单值优先，其次为配置默认值
func (h *Handler) viewOptions(form processForm) (view.Options, error) {
	opts := view.Options{
		Month: h.defaults.Month,
		Focus: view.FocusMonth,
		Order: h.defaults.Order,
		Today: h.now(),
	}

	var err error
	if form.Mode != "" {
		if opts.Month, err = view.ParseMonthMode(form.Mode); err != nil {
			return opts, badRequest(err)
		}
	}
	if form.Month != "" {
		ym, err := model.ParseYearMonth(form.Month)
		if err != nil {
			return opts, badRequest(err)
		}
		opts.Selected = ym
		if form.Mode == "" {
			opts.Month = view.MonthSelected
		}
	}
	if opts.Focus, err = view.ParseFocus(form.Focus); err != nil {
		return opts, badRequest(err)
	}
	if form.Order != "" {
		if opts.Order, err = view.ParseOrder(form.Order); err != nil {
			return opts, badRequest(err)
		}
	}
	return opts, nil
}

// readSource 上传文件优先，其次为链接，最后为缓存的链接
func (h *Handler) readSource(c *gin.Context, form processForm) (*source.Source, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return source.FromUpload(filepath.Base(fh.Filename), data, h.maxBytes)
	}

	link := strings.TrimSpace(form.Link)
	if link == "" && form.UseLastLink && h.resolver != nil {
		last, err := h.resolver.LastLink()
		if err != nil {
			return nil, err
		}
		link = last
	}
	if link == "" {
		return nil, badRequest(errNoSource)
	}
	if h.resolver == nil {
		return nil, badRequest(errors.New("remote links are disabled"))
	}
	return h.resolver.Fetch(c.Request.Context(), link)
}

// storeExport 写出临时 xlsx 并登记一次性下载令牌
func (h *Handler) storeExport(result *importer.Result) (string, error) {
	file, err := exporter.Export(exporter.ExportOptions{Records: result.Records})
	if err != nil {
		return "", err
	}
	defer file.Close()

	path := filepath.Join(h.exportDir, fmt.Sprintf("export_%s.xlsx", uuid.NewString()))
	if err := file.SaveAs(path); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	return h.downloads.put(exportDownload{
		filePath: path,
		fileName: exporter.FileName(result.Query, result.Month),
	}, downloadTTL), nil
}

func downloadURL(c *gin.Context, token string) string {
	prefix := "/api"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/download/%s", prefix, token)
}

func monthString(ym model.YearMonth) string {
	if ym.IsZero() {
		return ""
	}
	return ym.String()
}

// requestError 客户端输入错误
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

// writeError 将错误映射为 HTTP 状态码
func (h *Handler) writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		h.logger.Info("request rejected", zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func errorStatus(err error) int {
	var fetchErr *source.FetchError
	var reqErr *requestError
	switch {
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, parser.ErrFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, source.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &reqErr),
		errors.Is(err, source.ErrEmptyFile),
		errors.Is(err, source.ErrInvalidLink),
		errors.Is(err, excel.ErrUnsupportedFormat),
		errors.Is(err, excel.ErrSheetNotFound),
		errors.Is(err, excel.ErrNoSheets):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
