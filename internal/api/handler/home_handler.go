package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/warbler/internal/api/middleware"
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/pkg/response"
)

// Home 首页时间线
// @Summary 首页（登录后为自己+关注的消息，匿名为最近公开消息）
// @Tags 时间线
// @Produce json
// @Success 200 {object} response.Response
// @Router / [get]
func (h *Handler) Home(c *gin.Context) {
	flashes := session.PopFlashes(c)

	if u, ok := middleware.CurrentUser(c); ok {
		items, err := h.timeline.Home(c.Request.Context(), u.ID, 0)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Success(c, gin.H{
			"flash":    flashes,
			"user":     gin.H{"id": u.ID, "username": u.Username},
			"messages": items,
		})
		return
	}

	items, err := h.timeline.Recent(c.Request.Context(), 0)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"flash":    flashes,
		"messages": items,
	})
}
