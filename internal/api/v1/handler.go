// Package v1 排班提取 HTTP API
package v1

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jonaycp/my-timesheet/internal/importer"
	"github.com/jonaycp/my-timesheet/internal/source"
	"github.com/jonaycp/my-timesheet/internal/view"
)

const (
	downloadTTL = 10 * time.Minute
	sessionTTL  = 12 * time.Hour
)

// Defaults 表单未填写时使用的默认值（来自配置）
type Defaults struct {
	Query string
	Month view.MonthMode
	Order view.Order
}

// Options 处理器依赖
type Options struct {
	Coordinator *importer.Coordinator
	Resolver    *source.Resolver
	Password    string // 为空时不校验
	ExportDir   string
	MaxBytes    int64
	Defaults    Defaults
	Logger      *zap.Logger
	Now         func() time.Time // 测试注入“今天”
}

// Handler V1 API 处理器
type Handler struct {
	coordinator *importer.Coordinator
	resolver    *source.Resolver
	password    string
	exportDir   string
	maxBytes    int64
	defaults    Defaults
	logger      *zap.Logger
	now         func() time.Time

	downloads *tokenStore[exportDownload]
	sessions  *tokenStore[session]
}

// NewHandler 创建 V1 API 处理器
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = source.DefaultMaxBytes
	}
	defaults := opts.Defaults
	if defaults.Month == "" {
		defaults.Month = view.MonthLatest
	}
	if defaults.Order == "" {
		defaults.Order = view.OrderAsc
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Handler{
		coordinator: opts.Coordinator,
		resolver:    opts.Resolver,
		password:    opts.Password,
		exportDir:   exportDir,
		maxBytes:    maxBytes,
		defaults:    defaults,
		logger:      logger,
		now:         now,
		downloads: newTokenStore(func(d exportDownload) {
			_ = os.Remove(d.filePath)
		}),
		sessions: newTokenStore[session](nil),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.Use(h.SessionContext())

	// 登录与状态无需会话
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/status", h.GetStatus)

	authed := router.Group("")
	authed.Use(h.RequireSession())
	{
		// 排班处理
		authed.POST("/roster/sheets", h.ListSheets)
		authed.POST("/roster/process", h.Process)

		// 导出下载（一次性）
		authed.GET("/export/download/:token", h.DownloadExport)

		// 远程链接缓存
		authed.GET("/link", h.GetLink)
		authed.DELETE("/link", h.ClearLink)
	}
}

// RegisterPages 注册服务端渲染页面
func (h *Handler) RegisterPages(engine *gin.Engine) error {
	tmpl, err := parsePageTemplates()
	if err != nil {
		return err
	}
	engine.SetHTMLTemplate(tmpl)

	pages := engine.Group("/")
	pages.Use(h.SessionContext())
	pages.GET("/", h.Page)
	pages.POST("/", h.SubmitPage)
	pages.POST("/login", h.PageLogin)
	return nil
}

// Close 清理未下载的导出文件
func (h *Handler) Close() {
	for _, d := range h.downloads.drain() {
		_ = os.Remove(d.filePath)
	}
}
