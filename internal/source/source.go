// Package source 提供排班表原始字节：本地上传或远程链接下载
package source

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/jonaycp/my-timesheet/internal/service/excel"
)

// DefaultMaxBytes 单个文件大小上限
const DefaultMaxBytes = 20 << 20

var (
	// ErrEmptyFile 上传内容为空
	ErrEmptyFile = errors.New("empty file")
	// ErrTooLarge 文件超出大小限制
	ErrTooLarge = errors.New("file too large")
	// ErrInvalidLink 链接格式不正确
	ErrInvalidLink = errors.New("invalid link")
)

// Source 完整的表格字节（不会是部分内容）
type Source struct {
	Name   string
	Data   []byte
	Link   string // 远程来源时为原始链接
	Format excel.Format
}

// FromUpload 校验上传的文件
func FromUpload(filename string, data []byte, maxBytes int64) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	format, err := excel.DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}
	return &Source{Name: filename, Data: data, Format: format}, nil
}

// Open 以工作簿形式打开
func (s *Source) Open() (*excel.Workbook, error) {
	return excel.Open(s.Name, s.Data)
}

var (
	sheetsPath = regexp.MustCompile(`^/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	drivePath  = regexp.MustCompile(`^/file/d/([a-zA-Z0-9_-]+)`)
)

// NormalizeLink 将常见的共享链接改写为可直接下载的地址
//   - Google Sheets: /spreadsheets/d/{id}/... -> /spreadsheets/d/{id}/export?format=xlsx
//   - Google Drive:  /file/d/{id}/view        -> /uc?export=download&id={id}
//   - Dropbox:       dl=0                      -> dl=1
func NormalizeLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "docs.google.com":
		if m := sheetsPath.FindStringSubmatch(u.Path); m != nil {
			return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=xlsx", m[1]), nil
		}
	case host == "drive.google.com":
		if m := drivePath.FindStringSubmatch(u.Path); m != nil {
			return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", m[1]), nil
		}
	case host == "dropbox.com" || strings.HasSuffix(host, ".dropbox.com"):
		q := u.Query()
		q.Set("dl", "1")
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return u.String(), nil
}

// nameFromURL 取 URL 路径最后一段作为文件名
func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
