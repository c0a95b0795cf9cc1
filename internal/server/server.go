package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/jonaycp/my-timesheet/internal/api/v1"
	"github.com/jonaycp/my-timesheet/internal/config"
	"github.com/jonaycp/my-timesheet/internal/importer"
	"github.com/jonaycp/my-timesheet/internal/parser"
	"github.com/jonaycp/my-timesheet/internal/source"
	"github.com/jonaycp/my-timesheet/internal/store"
	"github.com/jonaycp/my-timesheet/internal/view"
)

const shutdownTimeout = 5 * time.Second

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
	logger *zap.Logger
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	sqliteStore, err := store.New(filepath.Join(dataDir, store.DBFileName))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	handler, err := newHandler(cfg, sqliteStore, filepath.Join(dataDir, "exports"), logger)
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	s := &Server{
		router: gin.New(),
		store:  sqliteStore,
		v1:     handler,
		logger: logger,
	}
	if err := s.setupRoutes(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// newHandler 按配置组装处理流程、下载器与 API 处理器
func newHandler(cfg *config.AppConfig, st *store.Store, exportDir string, logger *zap.Logger) (*v1.Handler, error) {
	mode, err := view.ParseMonthMode(cfg.Roster.Mode)
	if err != nil {
		return nil, fmt.Errorf("config [roster] mode: %w", err)
	}
	order, err := view.ParseOrder(cfg.Roster.Order)
	if err != nil {
		return nil, fmt.Errorf("config [roster] order: %w", err)
	}

	coordinator := importer.NewCoordinator(logger.Named("roster"), parser.NormalizeOptions{
		MissingLabel: cfg.Roster.MissingLabel,
	})
	coordinator.SetPreferredSheet(cfg.Roster.PreferredSheet)

	resolver := source.NewResolver(source.Options{
		Timeout:       cfg.Source.Timeout.Duration,
		MaxBytes:      cfg.Source.MaxBytes,
		Attempts:      cfg.Source.Attempts,
		RatePerSecond: cfg.Source.RatePerSecond,
		Cache:         st,
		Logger:        logger.Named("source"),
	})

	return v1.NewHandler(v1.Options{
		Coordinator: coordinator,
		Resolver:    resolver,
		Password:    cfg.Auth.Password,
		ExportDir:   exportDir,
		MaxBytes:    cfg.Source.MaxBytes,
		Defaults: v1.Defaults{
			Query: cfg.Roster.DefaultQuery,
			Month: mode,
			Order: order,
		},
		Logger: logger.Named("api"),
	}), nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	s.router.Use(requestLogger(s.logger.Named("http")), recovery(s.logger))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// V1 API 路由（/api 与 /api/v1 等价）
	s.v1.RegisterRoutes(s.router.Group("/api"))
	s.v1.RegisterRoutes(s.router.Group("/api/v1"))

	// 首页
	return s.v1.RegisterPages(s.router)
}

// Handler 供测试直接使用的 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

// Close 清理导出文件并关闭数据库
func (s *Server) Close() error {
	s.v1.Close()
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
