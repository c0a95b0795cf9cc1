package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLink 上次成功使用的远程链接
// GET /api/link
func (h *Handler) GetLink(c *gin.Context) {
	if h.resolver == nil {
		c.JSON(http.StatusOK, gin.H{"link": ""})
		return
	}
	link, err := h.resolver.LastLink()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// ClearLink 清除缓存的链接
// DELETE /api/link
func (h *Handler) ClearLink(c *gin.Context) {
	if h.resolver != nil {
		if err := h.resolver.ClearLink(); err != nil {
			h.writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"link": ""})
}
