package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/miniblog/miniblog/auth"
	"github.com/miniblog/miniblog/config"
	"github.com/miniblog/miniblog/controllers"
	"github.com/miniblog/miniblog/middleware"
	"github.com/miniblog/miniblog/store"
	"github.com/miniblog/miniblog/utils"
)

// SessionCookieName is the cookie carrying the session identity.
const SessionCookieName = "mb_session"

const sessionMaxAge = 72 * time.Hour

// SetupRouter wires routes, middlewares, and controllers. The stores come in
// explicitly so tests and alternate backends can inject their own.
func SetupRouter(cfg config.AppConfig, users store.UserStore, posts store.PostStore) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	// Separate file-based zap access log; fall back to the default recovery
	// when the log file cannot be opened.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   strings.ToLower(cfg.GinMode) == "release",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(SessionCookieName, sessionStore))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	mgr := auth.NewManager(users)
	authController := controllers.NewAuthController(users, mgr)
	postController := controllers.NewPostController(posts, cfg.FeedPageSize)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	// Logout stays reachable for anonymous sessions so it is idempotent.
	authGroup.POST("/logout", authController.Logout)
	authGroup.GET("/me", middleware.LoginRequired(mgr), authController.Me)

	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/users/:id/posts", postController.ListUserPosts)

	protected := api.Group("")
	protected.Use(middleware.LoginRequired(mgr))
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
