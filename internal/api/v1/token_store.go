package v1

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type tokenItem[T any] struct {
	value     T
	expiresAt time.Time
}

// tokenStore 带过期时间的一次性/会话令牌（导出下载、登录会话共用）
type tokenStore[T any] struct {
	mu    sync.Mutex
	items map[string]tokenItem[T]
	now   func() time.Time
	evict func(T) // 过期清理回调，可为 nil
}

func newTokenStore[T any](evict func(T)) *tokenStore[T] {
	return &tokenStore[T]{
		items: make(map[string]tokenItem[T]),
		now:   time.Now,
		evict: evict,
	}
}

func (s *tokenStore[T]) put(value T, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	s.items[token] = tokenItem[T]{
		value:     value,
		expiresAt: now.Add(ttl),
	}
	return token
}

func (s *tokenStore[T]) get(token string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(token)
}

// take 取出并删除（一次性下载）
func (s *tokenStore[T]) take(token string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLocked(token)
	if ok {
		delete(s.items, token)
	}
	return v, ok
}

func (s *tokenStore[T]) getLocked(token string) (T, bool) {
	var zero T
	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return zero, false
	}
	if now.After(v.expiresAt) {
		s.removeLocked(token, v.value)
		return zero, false
	}
	return v.value, true
}

func (s *tokenStore[T]) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// drain 清空并返回所有未过期的值（关闭时清理临时文件）
func (s *tokenStore[T]) drain() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, v.value)
	}
	s.items = make(map[string]tokenItem[T])
	return out
}

func (s *tokenStore[T]) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			s.removeLocked(k, v.value)
		}
	}
}

func (s *tokenStore[T]) removeLocked(token string, value T) {
	delete(s.items, token)
	if s.evict != nil {
		s.evict(value)
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
