// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// RelayHandler forwards widget uploads to the processing backend
type RelayHandler interface {
	HandleUpload(c echo.Context) error
}

// JournalHandler exposes the relay's attempt journal
type JournalHandler interface {
	HandleRecentUploads(c echo.Context) error
	HandleRecentUploadsMsgpack(c echo.Context) error
	HandleGetUpload(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
