// Package web serves the embedded browser upload widget.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed dist/*
var staticFiles embed.FS

// Settings are rendered into the widget page so the script posts to the
// configured endpoint.
type Settings struct {
	Endpoint     string
	FieldName    string
	AcceptedType string
}

// GetFileSystem returns the embedded filesystem with the dist folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "dist")
}

// RegisterStaticRoutes registers the widget page and its assets with Echo.
func RegisterStaticRoutes(e *echo.Echo, settings Settings) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	page, err := renderIndex(staticFS, settings)
	if err != nil {
		return err
	}

	serveIndex := func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, page)
	}
	e.GET("/", serveIndex)
	e.GET("/index.html", serveIndex)

	e.GET("/assets/*", echo.WrapHandler(http.FileServer(http.FS(staticFS))))

	return nil
}

func renderIndex(staticFS fs.FS, settings Settings) ([]byte, error) {
	tmpl, err := template.ParseFS(staticFS, "index.html")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, settings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HasEmbeddedFiles returns true if the widget page has been embedded.
func HasEmbeddedFiles() bool {
	entries, err := staticFiles.ReadDir("dist")
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Name() == "index.html" {
			return true
		}
	}
	return false
}
