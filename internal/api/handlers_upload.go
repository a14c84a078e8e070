// handlers_upload.go - Attempt journal handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/statement-analyzer/uploader/internal/upload"
	"github.com/vmihailenco/msgpack/v5"
)

// recentLimit caps the journal listing.
const recentLimit = 20

// JournalHandlerImpl implements the JournalHandler interface
type JournalHandlerImpl struct {
	attempts *upload.Manager
}

// NewJournalHandler creates a new journal handler instance
func NewJournalHandler(attempts *upload.Manager) JournalHandler {
	return &JournalHandlerImpl{attempts: attempts}
}

// HandleRecentUploads returns the most recent relayed uploads, newest first
func (h *JournalHandlerImpl) HandleRecentUploads(c echo.Context) error {
	return c.JSON(http.StatusOK, h.attempts.Recent(recentLimit))
}

// HandleRecentUploadsMsgpack returns the recent uploads in MessagePack format
func (h *JournalHandlerImpl) HandleRecentUploadsMsgpack(c echo.Context) error {
	recent := h.attempts.Recent(recentLimit)

	data, err := msgpack.Marshal(map[string]interface{}{
		"attempts": recent,
		"total":    len(recent),
		"inFlight": h.attempts.InFlight(),
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetUpload returns a single relayed upload
func (h *JournalHandlerImpl) HandleGetUpload(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	attempt, ok := h.attempts.Get(id)
	if !ok {
		return NewNotFoundError("upload", id)
	}

	return c.JSON(http.StatusOK, attempt)
}
