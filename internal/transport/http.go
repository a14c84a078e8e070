// Package transport sends a selected file to the upload endpoint as a
// multipart form request and decodes the JSON reply.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/statement-analyzer/uploader/internal/progress"
	"go.uber.org/zap"
)

const (
	DefaultPath      = "/upload"
	DefaultFieldName = "pdf"

	// HeaderFileName names the file for relays that do not parse the body.
	HeaderFileName = "X-File-Name"

	// maxErrorBody bounds how much of a rejected response is kept for diagnostics.
	maxErrorBody = 512
)

// Options configures an HTTPTransport.
type Options struct {
	BaseURL   string        // scheme://host[:port]
	Path      string        // defaults to DefaultPath
	FieldName string        // defaults to DefaultFieldName
	Timeout   time.Duration // 0 leaves the client's default (none)
	Client    *http.Client
	Logger    *zap.Logger
}

// HTTPTransport uploads files with a single POST request.
type HTTPTransport struct {
	client    *http.Client
	endpoint  string
	fieldName string
	logger    *zap.Logger
}

// New creates an HTTPTransport from opts.
func New(opts Options) (*HTTPTransport, error) {
	endpoint, err := buildEndpoint(opts.BaseURL, opts.Path)
	if err != nil {
		return nil, err
	}

	fieldName := opts.FieldName
	if fieldName == "" {
		fieldName = DefaultFieldName
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPTransport{
		client:    client,
		endpoint:  endpoint,
		fieldName: fieldName,
		logger:    logger.With(zap.String("component", "transport")),
	}, nil
}

// Endpoint returns the absolute URL uploads are sent to.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// Upload posts file to the endpoint and returns the decoded JSON payload.
// onProgress receives non-decreasing progress values while the body is
// written; it is never called when the file size is unknown.
func (t *HTTPTransport) Upload(ctx context.Context, file *models.SelectedFile, onProgress func(models.UploadProgress)) (any, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer content.Close()

	body, contentType, length, err := t.multipartBody(file, content)
	if err != nil {
		return nil, err
	}

	if length >= 0 && onProgress != nil {
		body = progress.NewReader(body, length, func(loaded, total int64) {
			onProgress(models.NewUploadProgress(loaded, total))
		})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if length >= 0 {
		req.ContentLength = length
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderFileName, url.PathEscape(file.Name))

	t.logger.Debug("sending upload",
		zap.String("endpoint", t.endpoint),
		zap.String("file", file.Name),
		zap.Int64("size", file.Size),
		zap.Int64("content_length", length),
	)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeResponse, err)
	}

	return payload, nil
}

// multipartBody lays out the form as preamble + file bytes + closing
// boundary so the total length is known before anything is sent.
func (t *HTTPTransport) multipartBody(file *models.SelectedFile, content io.Reader) (io.Reader, string, int64, error) {
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)

	contentType := file.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(t.fieldName), escapeQuotes(file.Name)))
	h.Set("Content-Type", contentType)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, "", 0, fmt.Errorf("writing multipart header: %w", err)
	}

	// Same trailer multipart.Writer.Close emits after a part.
	tail := fmt.Sprintf("\r\n--%s--\r\n", mw.Boundary())

	length := int64(-1)
	if file.SizeKnown() {
		length = int64(head.Len()) + file.Size + int64(len(tail))
	}

	body := io.MultiReader(&head, content, strings.NewReader(tail))
	return body, mw.FormDataContentType(), length, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func buildEndpoint(baseURL, path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if baseURL == "" {
		return "", fmt.Errorf("base URL is required")
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("base URL %q must use http or https", baseURL)
	}
	if base.Host == "" {
		return "", fmt.Errorf("base URL %q has no host", baseURL)
	}

	return base.String() + path, nil
}
