package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Skufu/refractplan/internal/config"
	"github.com/Skufu/refractplan/internal/logging"
	"github.com/Skufu/refractplan/internal/planner"
)

func setupRouter(cfg *config.Config, db HealthChecker, p *planner.Planner, logger *zap.Logger) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(planner.JSONFieldName)
	}

	router := gin.New()
	router.Use(
		logging.GinLogger(logger, "http"),
		gin.Recovery(),
		httpMetrics.Handler(),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	// External UI, served only when one is present.
	if cfg.StaticDir != "" && fileExists(filepath.Join(cfg.StaticDir, "index.html")) {
		router.Static("/static", cfg.StaticDir)
		router.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := db.Ping(ctx); err != nil {
			dbStatus = fmt.Sprintf("unhealthy: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     dbStatus,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"db":     dbStatus,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &caseHandler{planner: p, logger: logger.Named("cases")}
	cases := router.Group("/api/cases")
	cases.POST("/evaluate", limitBodySize(cfg.MaxBodyBytes), h.evaluate)
	cases.POST("/batch", limitBodySize(cfg.MaxBodyBytes), h.batch)
	cases.POST("/upload", limitBodySize(cfg.MaxUploadBytes), h.upload)

	return router
}
