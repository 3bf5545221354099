package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/pkg/response"
)

type signupRequest struct {
	Username string `form:"username" binding:"required,max=30,username"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	ImageURL string `form:"image_url"`
}

// Signup 注册并开启会话
// @Summary 注册
// @Tags 认证
// @Accept x-www-form-urlencoded
// @Param username formData string true "用户名"
// @Param email formData string true "邮箱"
// @Param password formData string true "密码"
// @Param image_url formData string false "头像"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.Signup(c.Request.Context(), req.Username, req.Email, req.Password, req.ImageURL)
	if err != nil {
		// username/email 唯一索引冲突走这里
		session.Flash(c, "Username or email already taken.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err := session.SetCurrentUser(c, h.sess, u.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Login 登录
// @Summary 登录
// @Tags 认证
// @Accept x-www-form-urlencoded
// @Param username formData string true "用户名"
// @Param password formData string true "密码"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		// 用户名不存在与密码错误不作区分
		session.Flash(c, "Invalid credentials.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err := session.SetCurrentUser(c, h.sess, u.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout 登出
// @Summary 登出
// @Tags 认证
// @Success 302
// @Router /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	session.Clear(c)
	session.Flash(c, "You have successfully logged out.")
	c.Redirect(http.StatusFound, "/")
}
