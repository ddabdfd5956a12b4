// Package admin exposes the operator surface for the scoring configuration:
// inspecting the active weights, replacing them at runtime, and reloading
// them from the configuration file.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "leadqual_backend/internal/http"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/platform/httpkit"
	"leadqual_backend/platform/logger"
)

// Module is the admin module implementing http.Module.
type Module struct {
	config *scoring.Provider
	log    *logger.Logger
}

func NewModule(config *scoring.Provider, log *logger.Logger) *Module {
	return &Module{config: config, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes mounts the admin routes on the rate-limited admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/scoring-config", m.getConfig)
	ctx.Admin.PUT("/scoring-config", m.updateConfig)
	ctx.Admin.POST("/scoring-config/reload", m.reloadConfig)
}

func (m *Module) getConfig(c *gin.Context) {
	httpkit.OK(c, m.config.Current())
}

// updateConfig swaps the active configuration in-process. The change is not
// written back to the configuration file; a restart or reload reverts it.
func (m *Module) updateConfig(c *gin.Context) {
	var cfg scoring.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid scoring config", nil)
		return
	}

	m.config.Update(cfg)
	httpkit.OK(c, m.config.Current())
}

func (m *Module) reloadConfig(c *gin.Context) {
	if err := m.config.Reload(); err != nil {
		httpkit.Error(c, http.StatusUnprocessableEntity, "scoring config reload failed", err.Error())
		return
	}
	httpkit.OK(c, m.config.Current())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
