package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lexdashapp/lexdash/internal/cache"
	"github.com/lexdashapp/lexdash/internal/config"
	"github.com/lexdashapp/lexdash/internal/engine"
	"github.com/lexdashapp/lexdash/pkg/logger"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, eng *engine.Engine, db *gorm.DB, cache cache.Cache, logger *logger.Logger, cfg *config.Config) {
	// Create handlers
	h := NewHandlers(eng, db, cache, logger, cfg)

	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", h.HealthCheck)

		// Entity collections
		api.POST("/clients", h.CreateClient)
		api.GET("/clients", h.ListClients)
		api.PUT("/clients/:id", h.UpdateClient)

		api.POST("/processes", h.CreateProcess)
		api.GET("/processes", h.ListProcesses)
		api.PUT("/processes/:id", h.UpdateProcess)

		api.POST("/transactions", h.CreateTransaction)
		api.GET("/transactions", h.ListTransactions)
		api.POST("/transactions/:id/pay", h.PayTransaction)

		api.POST("/partners", h.CreatePartner)
		api.GET("/partners", h.ListPartners)
		api.PUT("/partners/:id", h.UpdatePartner)

		// Derived reads
		api.GET("/metrics", h.GetMetrics)
		api.GET("/reports", h.GetReport)

		// Cache stats
		api.GET("/cache/stats", h.CacheStats)
	}
}
