// handlers_relay.go - Relay of widget uploads to the processing backend
package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/statement-analyzer/uploader/internal/progress"
	"github.com/statement-analyzer/uploader/internal/transport"
	"github.com/statement-analyzer/uploader/internal/upload"
	"go.uber.org/zap"
)

const (
	// HeaderAttemptID carries the journal ID of a relayed upload back to the caller.
	HeaderAttemptID = "X-Upload-Attempt"

	// HeaderFileName optionally names the uploaded file, URL-encoded.
	HeaderFileName = "X-File-Name"
)

// RelayHandlerImpl implements the RelayHandler interface. The request body
// is streamed to the backend untouched; only its byte count is observed.
type RelayHandlerImpl struct {
	backend   *url.URL
	attempts  *upload.Manager
	transport http.RoundTripper
	logger    *zap.Logger
}

// NewRelayHandler creates a relay to backendURL. An empty backendURL yields
// a handler that answers 503 until a backend is configured.
func NewRelayHandler(backendURL string, attempts *upload.Manager, logger *zap.Logger) (RelayHandler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &RelayHandlerImpl{
		attempts: attempts,
		transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		},
		logger: logger.With(zap.String("component", "relay")),
	}

	if backendURL == "" {
		return h, nil
	}

	backend, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if backend.Scheme != "http" && backend.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", backendURL)
	}
	if backend.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: missing host", backendURL)
	}
	h.backend = backend
	return h, nil
}

// HandleUpload forwards the multipart request to the backend and journals it
func (h *RelayHandlerImpl) HandleUpload(c echo.Context) error {
	if h.backend == nil {
		return NewServiceUnavailableError("no upload backend configured")
	}

	req := c.Request()
	file := models.NewSelectedFile(fileName(req.Header.Get(HeaderFileName)), req.ContentLength, mediaType(req.Header.Get(echo.HeaderContentType)), nil)
	attempt, err := h.attempts.Begin(file)
	if errors.Is(err, upload.ErrInFlightLimit) {
		return NewConflictError(models.MessageUploadInProgress)
	}
	if err != nil {
		return NewInternalError("failed to record upload", err)
	}

	if req.ContentLength > 0 && req.Body != nil {
		counted := progress.NewReader(req.Body, req.ContentLength, func(loaded, total int64) {
			h.attempts.UpdateProgress(attempt.ID, models.NewUploadProgress(loaded, total))
		})
		req.Body = struct {
			io.Reader
			io.Closer
		}{counted, req.Body}
	}

	var proxyErr error
	proxy := &httputil.ReverseProxy{
		Director: func(out *http.Request) {
			out.URL.Scheme = h.backend.Scheme
			out.URL.Host = h.backend.Host
			out.URL.Path = joinPath(h.backend.Path, out.URL.Path)
			out.Host = h.backend.Host
		},
		Transport: h.transport,
		ModifyResponse: func(resp *http.Response) error {
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				h.attempts.MarkFailed(attempt.ID, &transport.StatusError{StatusCode: resp.StatusCode})
			} else {
				h.attempts.MarkSucceeded(attempt.ID)
			}
			resp.Header.Set(HeaderAttemptID, attempt.ID)
			return nil
		},
		ErrorHandler: func(_ http.ResponseWriter, _ *http.Request, err error) {
			proxyErr = err
		},
	}

	h.logger.Debug("relaying upload",
		zap.String("attempt", attempt.ID),
		zap.String("backend", h.backend.Host),
		zap.Int64("contentLength", req.ContentLength),
	)

	proxy.ServeHTTP(c.Response(), req)

	if proxyErr != nil {
		h.attempts.MarkFailed(attempt.ID, proxyErr)

		// Errors raised while reading the request body (the body limit)
		// belong to the client, not the backend.
		var httpErr *echo.HTTPError
		if errors.As(proxyErr, &httpErr) {
			return httpErr
		}
		return NewBadGatewayError("upload backend unreachable", proxyErr)
	}
	return nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

func fileName(header string) string {
	if header == "" {
		return ""
	}
	name, err := url.PathUnescape(header)
	if err != nil {
		return header
	}
	return name
}

func joinPath(base, path string) string {
	switch {
	case base == "":
		return path
	case strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/"):
		return base + path[1:]
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(path, "/"):
		return base + "/" + path
	}
	return base + path
}
