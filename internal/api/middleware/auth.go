package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
)

// FlashAccessUnauthorized 授权失败的提示文案（前端与测试都依赖原文）
const FlashAccessUnauthorized = "Access unauthorized."

const contextUserKey = "currentUser"

// LoadUser 解析会话 cookie，把当前用户放进请求上下文；失败一律按匿名处理
func LoadUser(m *session.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		userID, err := m.Parse(token)
		if err != nil {
			c.Next()
			return
		}
		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.Next()
			return
		}
		c.Set(contextUserKey, u)
		c.Next()
	}
}

// CurrentUser 取出 LoadUser 放入的当前用户
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}

// RequireLogin 未登录时 flash + 302 回首页，绝不 5xx
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			session.Flash(c, FlashAccessUnauthorized)
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
