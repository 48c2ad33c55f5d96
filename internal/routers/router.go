package routers

import (
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/internal/middleware"
	"github.com/haierkeys/fast-note-kb-service/internal/routers/api_router"
	"github.com/haierkeys/fast-note-kb-service/internal/routers/mcp_router"
	"github.com/haierkeys/fast-note-kb-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// rateLimiter builds per-prefix buckets from the config; nil when disabled
func rateLimiter(cfg *app.AppConfig) limiter.Face {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	rule := func(key string, capacity, quantum int64) limiter.BucketRule {
		return limiter.BucketRule{
			Key:          key,
			FillInterval: cfg.GetFillInterval(),
			Capacity:     capacity,
			Quantum:      quantum,
		}
	}
	c, q := cfg.RateLimit.Capacity, cfg.RateLimit.Quantum
	return limiter.NewMethodLimiter().AddBuckets(
		rule("/api/notes", c, q),
		rule("/api/tags", c, q),
		rule("/api/mcp", c/2+1, q/2+1),
	)
}

// NewRouter 创建公共路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	r := gin.New()
	r.Use(middleware.Cors())

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
		api.Use(middleware.OpenTracing())
		api.Use(middleware.AccessLogWithLogger(lg))
		api.Use(middleware.RecoveryWithLogger(lg))
		if l := rateLimiter(cfg); l != nil {
			api.Use(middleware.RateLimiter(l))
		}
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))

		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		noteHandler := api_router.NewNoteHandler(appContainer)
		tagHandler := api_router.NewTagHandler(appContainer)
		noteTagHandler := api_router.NewNoteTagHandler(appContainer)

		auth := api.Group("", middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey))

		auth.GET("/notes", noteHandler.List)
		auth.POST("/notes", noteHandler.Create)
		auth.GET("/notes/:id", noteHandler.Get)
		auth.PATCH("/notes/:id", noteHandler.Update)
		auth.DELETE("/notes/:id", noteHandler.Delete)

		auth.GET("/notes/:id/tags", noteTagHandler.List)
		auth.POST("/notes/:id/tags", noteTagHandler.AttachByTitle)
		auth.PUT("/notes/:id/tags/:tagId", noteTagHandler.Attach)
		auth.DELETE("/notes/:id/tags/:tagId", noteTagHandler.Detach)

		auth.GET("/tags", tagHandler.List)
		auth.POST("/tags", tagHandler.Create)
		auth.PATCH("/tags/:id", tagHandler.Update)
		auth.DELETE("/tags/:id", tagHandler.Delete)
		auth.GET("/tags/:id/notes", tagHandler.Notes)

		auth.Any("/mcp", gin.WrapH(mcp_router.NewHandler(appContainer)))
	}

	r.NoRoute(middleware.NoFound())
	return r
}
