package v1

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookie 会话 Cookie 名
const SessionCookie = "timesheet_session"

const sessionKey = "session"

type session struct {
	createdAt time.Time
}

// Session 当前请求的会话上下文
type Session struct {
	Authenticated bool
	AuthRequired  bool
}

// SessionFrom 从请求上下文中取出会话
func SessionFrom(c *gin.Context) Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// SessionContext 解析会话 Cookie，未配置口令时视为已登录
func (h *Handler) SessionContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := Session{AuthRequired: h.password != ""}
		if !s.AuthRequired {
			s.Authenticated = true
		} else if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			_, s.Authenticated = h.sessions.get(token)
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// RequireSession 未登录时返回 401
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "password required"})
			return
		}
		c.Next()
	}
}

type loginRequest struct {
	Password string `json:"password" form:"password"`
}

// Login 校验口令并下发会话 Cookie
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !h.startSession(c, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout 注销会话
// POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		h.sessions.delete(token)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// startSession 口令正确时写入 Cookie；未配置口令时直接通过
func (h *Handler) startSession(c *gin.Context, password string) bool {
	if h.password == "" {
		return true
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(h.password)) != 1 {
		h.logger.Warn("login rejected", zap.String("client_ip", c.ClientIP()))
		return false
	}
	token := h.sessions.put(session{createdAt: h.now()}, sessionTTL)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)
	return true
}
