// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/statement-analyzer/uploader/internal/transport"
	"github.com/statement-analyzer/uploader/internal/upload"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Attempts   *upload.Manager
	BackendURL string
	Logger     *zap.Logger
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Relay   RelayHandler
	Journal JournalHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) (*Handlers, error) {
	relay, err := NewRelayHandler(deps.BackendURL, deps.Attempts, deps.Logger)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Attempts, deps.BackendURL != ""),
		Relay:   relay,
		Journal: NewJournalHandler(deps.Attempts),
	}, nil
}

// RegisterRoutes registers all API routes with the Echo instance.
// uploadPath defaults to transport.DefaultPath when empty.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, uploadPath string) {
	if uploadPath == "" {
		uploadPath = transport.DefaultPath
	}

	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Widget upload relay
	e.POST(uploadPath, handlers.Relay.HandleUpload)

	// Attempt journal
	uploads := e.Group("/api/uploads")
	uploads.GET("/recent", handlers.Journal.HandleRecentUploads)
	uploads.GET("/recent/msgpack", handlers.Journal.HandleRecentUploadsMsgpack)
	uploads.GET("/:id", handlers.Journal.HandleGetUpload)
}
