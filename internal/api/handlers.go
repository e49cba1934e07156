package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexdashapp/lexdash/internal/cache"
	"github.com/lexdashapp/lexdash/internal/config"
	"github.com/lexdashapp/lexdash/internal/engine"
	"github.com/lexdashapp/lexdash/pkg/logger"
	"gorm.io/gorm"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	engine *engine.Engine
	db     *gorm.DB
	cache  cache.Cache
	logger *logger.Logger
	cfg    *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(eng *engine.Engine, db *gorm.DB, cache cache.Cache, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		engine: eng,
		db:     db,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

// CreateClient handles client creation
func (h *Handlers) CreateClient(c *gin.Context) {
	var req engine.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.engine.AddClient(req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    client,
	})
}

// ListClients returns all clients in insertion order
func (h *Handlers) ListClients(c *gin.Context) {
	clients := h.engine.Clients()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    clients,
		"count":   len(clients),
	})
}

// UpdateClient replaces an existing client
func (h *Handlers) UpdateClient(c *gin.Context) {
	var req engine.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.engine.UpdateClient(c.Param("id"), req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    client,
	})
}

// CreateProcess handles case creation, including the upfront-fee cascade
func (h *Handlers) CreateProcess(c *gin.Context) {
	var req engine.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	process, err := h.engine.AddProcess(req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    process,
	})
}

// ListProcesses returns all cases in insertion order
func (h *Handlers) ListProcesses(c *gin.Context) {
	processes := h.engine.Processes()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    processes,
		"count":   len(processes),
	})
}

// UpdateProcess replaces an existing case
func (h *Handlers) UpdateProcess(c *gin.Context) {
	var req engine.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	process, err := h.engine.UpdateProcess(c.Param("id"), req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    process,
	})
}

// CreateTransaction handles transaction creation
func (h *Handlers) CreateTransaction(c *gin.Context) {
	var req engine.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.engine.AddTransaction(req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    txn,
	})
}

// ListTransactions returns all transactions in insertion order
func (h *Handlers) ListTransactions(c *gin.Context) {
	transactions := h.engine.Transactions()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transactions,
		"count":   len(transactions),
	})
}

// PayTransaction transitions a transaction to Paid
func (h *Handlers) PayTransaction(c *gin.Context) {
	txn, err := h.engine.MarkTransactionPaid(c.Param("id"))
	if err != nil {
		if errors.Is(err, engine.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txn,
	})
}

// CreatePartner handles partner creation
func (h *Handlers) CreatePartner(c *gin.Context) {
	var req engine.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	partner, err := h.engine.AddPartner(req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    partner,
	})
}

// ListPartners returns all partners in insertion order
func (h *Handlers) ListPartners(c *gin.Context) {
	partners := h.engine.Partners()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    partners,
		"count":   len(partners),
	})
}

// UpdatePartner replaces an existing partner
func (h *Handlers) UpdatePartner(c *gin.Context) {
	var req engine.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	partner, err := h.engine.UpdatePartner(c.Param("id"), req)
	if err != nil {
		referenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    partner,
	})
}

// GetMetrics returns the consolidated metrics snapshot, recomputed from the
// current collections on every request
func (h *Handlers) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.engine.Metrics(),
	})
}

// GetReport returns the consolidated report for the requested period
func (h *Handlers) GetReport(c *gin.Context) {
	now := time.Now()
	periodStart, err := parseDate(c.Query("start"), now.AddDate(0, -1, 0))
	if err != nil {
		badRequest(c, err)
		return
	}
	periodEnd, err := parseDate(c.Query("end"), now)
	if err != nil {
		badRequest(c, err)
		return
	}

	// A cached report is keyed by engine revision; it is only ever reused
	// when no mutation happened since it was generated.
	cacheKey := cache.GenerateCacheKey(h.engine.Revision(), periodStart, periodEnd)
	if cached, found := h.cache.Get(cacheKey); found {
		h.logger.Info("Cache hit", "key", cacheKey)
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"data":      cached,
			"fromCache": true,
		})
		return
	}

	report := h.engine.GenerateReport(periodStart, periodEnd)
	h.cache.Set(cacheKey, report)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      report,
		"fromCache": false,
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	dbHealthy := true
	if h.db != nil {
		sqlDB, err := h.db.DB()
		dbHealthy = err == nil && sqlDB.Ping() == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.cache.Stats(),
		"entities": gin.H{
			"clients":      len(h.engine.Clients()),
			"processes":    len(h.engine.Processes()),
			"transactions": len(h.engine.Transactions()),
			"partners":     len(h.engine.Partners()),
		},
		"time": time.Now().Unix(),
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	stats := h.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// referenceError maps an unresolvable entity reference to 404,
// anything else to 500
func referenceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrClientNotFound),
		errors.Is(err, engine.ErrProcessNotFound),
		errors.Is(err, engine.ErrTransactionNotFound),
		errors.Is(err, engine.ErrPartnerNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", value)
}
