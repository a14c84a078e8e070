// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/statement-analyzer/uploader/internal/upload"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version        string
	attempts       *upload.Manager
	relayAvailable bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, attempts *upload.Manager, relayAvailable bool) HealthHandler {
	return &HealthHandlerImpl{
		version:        version,
		attempts:       attempts,
		relayAvailable: relayAvailable,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	inFlight := 0
	if h.attempts != nil {
		inFlight = h.attempts.InFlight()
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"relay":    h.relayAvailable,
		"inFlight": inFlight,
	})
}
