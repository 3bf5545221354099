package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/api/middleware"
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/pkg/response"
)

func (h *Handler) userOr404(c *gin.Context, id string) (*model.User, bool) {
	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "user not found")
		} else {
			response.InternalError(c, err)
		}
		return nil, false
	}
	return u, true
}

// Show 用户主页（公开）：该用户的消息
// @Summary 用户主页
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{user_id} [get]
func (h *Handler) Show(c *gin.Context) {
	u, ok := h.userOr404(c, c.Param("user_id"))
	if !ok {
		return
	}
	items, err := h.timeline.Profile(c.Request.Context(), u.ID, 0)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	followerCnt, err := h.rel.CountFollowers(c.Request.Context(), u.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"flash":           session.PopFlashes(c),
		"user":            gin.H{"id": u.ID, "username": u.Username, "image_url": u.ImageURL},
		"followers_count": followerCnt,
		"messages":        items,
	})
}

// Likes 用户点赞过的消息（需登录）
// @Summary 点赞列表
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{user_id}/likes [get]
func (h *Handler) Likes(c *gin.Context) {
	u, ok := h.userOr404(c, c.Param("user_id"))
	if !ok {
		return
	}
	items, err := h.timeline.Liked(c.Request.Context(), u.ID, 0)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"flash":    session.PopFlashes(c),
		"user":     gin.H{"id": u.ID, "username": u.Username},
		"messages": items,
	})
}

// Following 用户关注的人（需登录）
// @Summary 关注列表
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /users/{user_id}/following [get]
func (h *Handler) Following(c *gin.Context) {
	u, ok := h.userOr404(c, c.Param("user_id"))
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	users, err := h.rel.ListFollowing(c.Request.Context(), u.ID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	list := make([]gin.H, len(users))
	for i, f := range users {
		list[i] = gin.H{"id": f.ID, "username": f.Username, "image_url": f.ImageURL}
	}
	response.Success(c, gin.H{
		"flash":     session.PopFlashes(c),
		"page":      page,
		"page_size": pageSize,
		"list":      list,
	})
}

// Followers 用户的粉丝（冗余表 + Redis 缓存，需登录）
// @Summary 粉丝列表
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /users/{user_id}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	u, ok := h.userOr404(c, c.Param("user_id"))
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.followers.List(c.Request.Context(), u.ID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"flash":     session.PopFlashes(c),
		"page":      page,
		"page_size": pageSize,
		"list":      list,
	})
}

// Follow 关注（需登录）
// @Summary 关注用户
// @Tags 用户
// @Param user_id path string true "被关注用户ID"
// @Success 302
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/follow/{user_id} [post]
func (h *Handler) Follow(c *gin.Context) {
	cu, _ := middleware.CurrentUser(c)
	target, ok := h.userOr404(c, c.Param("user_id"))
	if !ok {
		return
	}
	if err := h.rel.Follow(c.Request.Context(), cu.ID, target.ID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.followers.Invalidate(c.Request.Context(), target.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%s/following", cu.ID))
}

// StopFollowing 取消关注（需登录）
// @Summary 取消关注
// @Tags 用户
// @Param user_id path string true "被取关用户ID"
// @Success 302
// @Failure 404 {object} response.Response
// @Router /users/stop-following/{user_id} [post]
func (h *Handler) StopFollowing(c *gin.Context) {
	cu, _ := middleware.CurrentUser(c)
	target, ok := h.userOr404(c, c.Param("user_id"))
	if !ok {
		return
	}
	if err := h.rel.Unfollow(c.Request.Context(), cu.ID, target.ID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.followers.Invalidate(c.Request.Context(), target.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%s/following", cu.ID))
}
