// Package server exposes the analysis service over HTTP.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentiboard/internal/service"
)

// NewRouter creates and configures the Gin router.
func NewRouter(svc *service.Service, checks map[string]Pinger, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(Recovery(logger))

	h := NewHandler(svc, checks)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", h.Analyze)
		v1.POST("/evaluate", h.Evaluate)
		v1.POST("/summary", h.Summary)
		v1.POST("/export/:format", h.Export)
		v1.GET("/ground-truth", h.GroundTruth)
		v1.GET("/stats", h.Stats)

		runs := v1.Group("/runs")
		{
			runs.GET("", h.ListRuns)
			runs.GET("/:id", h.GetRun)
			runs.GET("/:id/export/:format", h.ExportRun)
		}
	}
	return router
}
