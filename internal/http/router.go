package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/srr_metrics/backend/internal/config"
	"github.com/srr_metrics/backend/internal/http/handlers"
	"github.com/srr_metrics/backend/internal/http/middleware"
	"github.com/srr_metrics/backend/internal/metrics"
	"github.com/srr_metrics/backend/internal/refresh"
	"github.com/srr_metrics/backend/internal/service"

	_ "github.com/srr_metrics/backend/docs"
)

func Router(cfg config.Config, dashboard *service.Dashboard, scheduler *refresh.Scheduler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "ETag", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Dashboard: dashboard,
		Scheduler: scheduler,
		Validator: validator.New(),
		Logger:    logger,
		Timeout:   cfg.RequestTimeout,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/overview", h.Overview)
		api.GET("/queue", h.Queue)
		api.GET("/breakdowns/:dimension", h.Breakdown)
		api.GET("/agents", h.Agents)
		api.GET("/requestors", h.Requestors)
		api.GET("/distributions", h.Distributions)
		api.GET("/records", h.Records)
		api.GET("/export/:table", h.Export)
		api.GET("/charts/:chart", h.Chart)
		api.GET("/refresh", h.RefreshStatus)
		api.GET("/events", h.Events)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/refresh", h.Refresh)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
