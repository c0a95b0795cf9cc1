package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonaycp/my-timesheet/internal/service/excel"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 3
	defaultRate     = 1.0
)

// LinkCache 上次成功使用的链接（单个字符串，整体读写）
type LinkCache interface {
	LastLink() (string, error)
	SaveLink(link string) error
	ClearLink() error
}

// FetchError 远程下载失败
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var errNotSpreadsheet = errors.New("link did not return a spreadsheet (is it shared publicly?)")

// Options 下载选项
type Options struct {
	Client        *http.Client
	Timeout       time.Duration
	MaxBytes      int64
	Attempts      int
	RatePerSecond float64 // 重试节奏
	Cache         LinkCache
	Logger        *zap.Logger
}

// Resolver 远程排班表下载器
type Resolver struct {
	client   *http.Client
	maxBytes int64
	attempts int
	limiter  *rate.Limiter
	cache    LinkCache
	logger   *zap.Logger
}

// NewResolver 创建下载器
func NewResolver(opts Options) *Resolver {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = defaultRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		client:   client,
		maxBytes: maxBytes,
		attempts: attempts,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		cache:    opts.Cache,
		logger:   logger,
	}
}

// LastLink 读取缓存的链接
func (r *Resolver) LastLink() (string, error) {
	if r.cache == nil {
		return "", nil
	}
	return r.cache.LastLink()
}

// ClearLink 清除缓存的链接
func (r *Resolver) ClearLink() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.ClearLink()
}

// Fetch 下载远程排班表；成功后覆盖缓存的链接
func (r *Resolver) Fetch(ctx context.Context, link string) (*Source, error) {
	target, err := NormalizeLink(link)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: target, Err: err}
		}

		src, retry, err := r.fetchOnce(ctx, target)
		if err == nil {
			src.Link = strings.TrimSpace(link)
			r.remember(src.Link)
			r.logger.Info("fetched roster",
				zap.String("url", target),
				zap.Int("bytes", len(src.Data)),
				zap.Int("attempt", attempt),
			)
			return src, nil
		}

		lastErr = err
		r.logger.Warn("roster fetch failed",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !retry {
			break
		}
	}
	return nil, lastErr
}

func (r *Resolver) remember(link string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SaveLink(link); err != nil {
		r.logger.Warn("failed to save last link", zap.Error(err))
	}
}

// fetchOnce 单次下载，返回是否值得重试
func (r *Resolver) fetchOnce(ctx context.Context, target string) (*Source, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, &FetchError{URL: target, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, &FetchError{URL: target, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, true, &FetchError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > r.maxBytes {
		return nil, false, &FetchError{URL: target, Err: fmt.Errorf("%w: limit %d bytes", ErrTooLarge, r.maxBytes)}
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = nameFromURL(target)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return nil, false, &FetchError{URL: target, Err: errNotSpreadsheet}
	}
	format, err := excel.DetectFormat(name, data)
	if err != nil {
		return nil, false, &FetchError{URL: target, Err: err}
	}

	return &Source{Name: name, Data: data, Format: format}, false, nil
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
