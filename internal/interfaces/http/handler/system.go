package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/offerflow/backend/internal/infrastructure/config"
)

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	cfg     *config.Config
	started time.Time
}

// NewSystemHandler creates the system handler
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg, started: time.Now()}
}

// RegisterRoutes registers system routes on the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.Info)
	}
}

// Info returns runtime information about the service
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"name":       h.cfg.App.Name,
		"env":        h.cfg.App.Env,
		"erp_vendor": h.cfg.ERP.Type,
		"go_version": runtime.Version(),
		"uptime":     time.Since(h.started).Round(time.Second).String(),
	})
}
