package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/devserver/config"
	"portfolio/devserver/handlers"
	"portfolio/devserver/middleware"
	"portfolio/devserver/store"
)

type Options struct {
	Config *config.Config
	Store  *store.AnalyticsStore
	Mirror *store.MultiSink
	Logger *zap.Logger
}

// New wires the analytics API and the static file fallback.
func New(opts Options) *gin.Engine {
	cfg := opts.Config

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger))

	analyticsHandlers := handlers.NewAnalyticsHandlers(opts.Store, opts.Mirror, opts.Logger)
	authHandlers := handlers.NewAuthHandlers(cfg.Dashboard, opts.Logger)
	staticHandlers := handlers.NewStaticHandlers(cfg.RootDir)

	api := r.Group("/api")
	api.Use(middleware.CORSMiddleware(cfg.CORSOrigin))
	{
		api.GET("/analytics.php", middleware.DashboardAuth(cfg.Dashboard, opts.Logger), analyticsHandlers.GetAnalytics)
		api.POST("/analytics.php", analyticsHandlers.TrackEvent)
		api.OPTIONS("/analytics.php", analyticsHandlers.Preflight)

		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)
	}

	r.NoMethod(handlers.MethodNotAllowed(r))
	r.NoRoute(staticHandlers.ServeFile)

	return r
}
