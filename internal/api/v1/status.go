package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	AuthRequired  bool   `json:"authRequired"`  // 是否配置了口令
	Authenticated bool   `json:"authenticated"` // 当前会话是否已登录
	DefaultQuery  string `json:"defaultQuery"`
	DefaultMode   string `json:"defaultMode"`
	DefaultOrder  string `json:"defaultOrder"`
	LinksEnabled  bool   `json:"linksEnabled"`
	HasLastLink   bool   `json:"hasLastLink"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	s := SessionFrom(c)
	resp := StatusResponse{
		AuthRequired:  s.AuthRequired,
		Authenticated: s.Authenticated,
		DefaultQuery:  h.defaults.Query,
		DefaultMode:   string(h.defaults.Month),
		DefaultOrder:  string(h.defaults.Order),
		LinksEnabled:  h.resolver != nil,
	}
	// 未登录时不暴露链接
	if s.Authenticated && h.resolver != nil {
		if link, err := h.resolver.LastLink(); err == nil {
			resp.HasLastLink = link != ""
		}
	}
	c.JSON(http.StatusOK, resp)
}
