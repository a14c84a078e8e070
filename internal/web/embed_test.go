package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	require.NoError(t, RegisterStaticRoutes(e, Settings{
		Endpoint:     "/upload",
		FieldName:    "pdf",
		AcceptedType: "application/pdf",
	}))
	return e
}

func TestHasEmbeddedFiles(t *testing.T) {
	assert.True(t, HasEmbeddedFiles())
}

func TestIndexRendersSettings(t *testing.T) {
	e := newServer(t)

	for _, path := range []string{"/", "/index.html"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		body := rec.Body.String()
		assert.Contains(t, body, `data-endpoint="/upload"`)
		assert.Contains(t, body, `data-field="pdf"`)
		assert.Contains(t, body, `data-accept="application/pdf"`)
		assert.Contains(t, body, `id="progressBar"`)
	}
}

func TestIndexEscapesSettings(t *testing.T) {
	e := echo.New()
	require.NoError(t, RegisterStaticRoutes(e, Settings{Endpoint: `/up"load`, FieldName: "pdf", AcceptedType: "application/pdf"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.NotContains(t, rec.Body.String(), `data-endpoint="/up"load"`)
}

func TestAssets(t *testing.T) {
	e := newServer(t)

	tests := []struct {
		path       string
		wantStatus int
		contains   string
	}{
		{path: "/assets/script.js", wantStatus: http.StatusOK, contains: "Upload Complete!"},
		{path: "/assets/style.css", wantStatus: http.StatusOK, contains: ".progress-bar"},
		{path: "/assets/missing.js", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}
