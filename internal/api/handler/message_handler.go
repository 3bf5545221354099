package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/api/middleware"
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/response"
)

type newMessageRequest struct {
	Text string `form:"text" binding:"required,max=140"`
}

// AddMessage 发布消息（需登录）
// @Summary 发布消息
// @Tags 消息
// @Accept x-www-form-urlencoded
// @Param text formData string true "内容"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /messages/new [post]
func (h *Handler) AddMessage(c *gin.Context) {
	cu, _ := middleware.CurrentUser(c)
	var req newMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if _, err := h.messages.Post(c.Request.Context(), cu.ID, req.Text); err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%s", cu.ID))
}

// DeleteMessage 删除消息（需登录且必须是作者）
// @Summary 删除消息
// @Tags 消息
// @Param message_id path string true "消息ID"
// @Success 302
// @Failure 404 {object} response.Response
// @Router /messages/{message_id}/delete [post]
func (h *Handler) DeleteMessage(c *gin.Context) {
	cu, _ := middleware.CurrentUser(c)
	err := h.messages.Delete(c.Request.Context(), cu.ID, c.Param("message_id"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, fmt.Sprintf("/users/%s", cu.ID))
	case errors.Is(err, service.ErrNotOwner):
		// 非作者删除按未授权处理，与匿名同样的提示
		session.Flash(c, middleware.FlashAccessUnauthorized)
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "message not found")
	default:
		response.InternalError(c, err)
	}
}

// ToggleLike 点赞/取消点赞（需登录）
// @Summary 点赞或取消点赞
// @Tags 消息
// @Param message_id path string true "消息ID"
// @Success 302
// @Failure 404 {object} response.Response
// @Router /messages/{message_id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	cu, _ := middleware.CurrentUser(c)
	messageID := c.Param("message_id")

	liked, err := h.messages.HasLiked(c.Request.Context(), cu.ID, messageID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if liked {
		err = h.messages.Unlike(c.Request.Context(), cu.ID, messageID)
	} else {
		err = h.messages.Like(c.Request.Context(), cu.ID, messageID)
	}
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "message not found")
	default:
		response.InternalError(c, err)
	}
}
