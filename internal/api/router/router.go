package router

import (
	"regexp"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/warbler/config"
	_ "github.com/d60-Lab/warbler/docs"
	"github.com/d60-Lab/warbler/internal/api/handler"
	"github.com/d60-Lab/warbler/internal/api/middleware"
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/repository"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	}
}

// New 组装 gin engine：中间件、路由、swagger
func New(cfg *config.Config, h *handler.Handler, sess *session.Manager, users repository.UserRepository) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidators()

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RateLimit(cfg.Limit.RPS, cfg.Limit.Burst),
		gzip.Gzip(gzip.DefaultCompression),
		otelgin.Middleware("warbler"),
		middleware.LoadUser(sess, users),
	)

	r.GET("/", h.Home)
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/users/:user_id", h.Show)

	auth := r.Group("", middleware.RequireLogin())
	{
		auth.GET("/users/:user_id/likes", h.Likes)
		auth.GET("/users/:user_id/following", h.Following)
		auth.GET("/users/:user_id/followers", h.Followers)
		auth.POST("/users/follow/:user_id", h.Follow)
		auth.POST("/users/stop-following/:user_id", h.StopFollowing)
		auth.POST("/messages/new", h.AddMessage)
		auth.POST("/messages/:message_id/delete", h.DeleteMessage)
		auth.POST("/messages/:message_id/like", h.ToggleLike)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
