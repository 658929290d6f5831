package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/internal/metrics"
	"mediahub/internal/microservices/http-api/handler"
	"mediahub/internal/microservices/http-api/middleware"
)

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps are the pieces NewRouter needs; App fills them in Router.
type RouterDeps struct {
	Verifier    middleware.TokenVerifier
	Health      Pinger
	CORSOrigins []string
	Metrics     bool
	Logger      *slog.Logger

	Search  *handler.SearchHandler
	Library *handler.LibraryHandler
	Versus  *handler.VersusHandler
	Import  *handler.ImportHandler
}

// Router builds the HTTP routes over the app's services.
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewRouter(RouterDeps{
		Verifier:    a.Verifier,
		Health:      a.DB,
		CORSOrigins: a.Config.CORSOrigins,
		Metrics:     a.Config.PrometheusEnabled,
		Logger:      a.Logger,
		Search:      handler.NewSearchHandler(a.Search),
		Library:     handler.NewLibraryHandler(a.Library),
		Versus:      handler.NewVersusHandler(a.Versus),
		Import:      handler.NewImportHandler(a.Import),
	})
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(d.CORSOrigins), middleware.Metrics())
	if d.Logger != nil {
		r.Use(middleware.RequestLogger(d.Logger))
	}

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if d.Health != nil {
			if err := d.Health.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := r.Group("/api", middleware.AuthMiddleware(d.Verifier))
	d.Search.RegisterRoutes(api)
	d.Library.RegisterRoutes(api)
	d.Versus.RegisterRoutes(api)
	d.Import.RegisterRoutes(api)
	return r
}
