package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// KeyLastSourceLink 上次成功使用的远程链接
const KeyLastSourceLink = "last_source_link"

// ErrNotFound 配置项不存在
var ErrNotFound = errors.New("config key not found")

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// DeleteConfig 删除配置项（不存在时不报错）
func (s *Store) DeleteConfig(key string) error {
	_, err := s.db.Exec("DELETE FROM config WHERE key = ?", key)
	return err
}

// LastLink 读取上次成功使用的链接，不存在时返回空字符串
func (s *Store) LastLink() (string, error) {
	v, err := s.GetConfig(KeyLastSourceLink)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SaveLink 覆盖保存链接（单行文本）
func (s *Store) SaveLink(link string) error {
	link = strings.TrimSpace(strings.SplitN(link, "\n", 2)[0])
	if link == "" {
		return s.ClearLink()
	}
	return s.SetConfig(KeyLastSourceLink, link)
}

// ClearLink 清除保存的链接
func (s *Store) ClearLink() error {
	return s.DeleteConfig(KeyLastSourceLink)
}
