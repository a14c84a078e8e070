// Package filesource turns local files into widget selections.
package filesource

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/statement-analyzer/uploader/internal/models"
)

// FromPath builds a SelectedFile for path. The MIME type is detected from
// the content; the extension is only consulted when detection falls back
// to a generic type.
func FromPath(path string) (*models.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mimeType, err := DetectMIMEType(path)
	if err != nil {
		return nil, err
	}

	open := func() (io.ReadCloser, error) {
		return os.Open(path)
	}
	return models.NewSelectedFile(filepath.Base(path), info.Size(), mimeType, open), nil
}

// DetectMIMEType returns the media type of the file at path without parameters.
func DetectMIMEType(path string) (string, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting type of %s: %w", path, err)
	}

	mimeType := baseType(detected.String())
	if mimeType == "application/octet-stream" || mimeType == "text/plain" {
		if byExt := baseType(mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))); byExt != "" {
			// Never let an extension claim PDF for content that is not one.
			if byExt != models.PDFMIMEType {
				return byExt, nil
			}
		}
	}
	return mimeType, nil
}

func baseType(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}

// Path is a FileSource over a path chosen on the command line. An empty
// path means nothing is selected.
type Path struct {
	path string
	file *models.SelectedFile
	err  error
}

// NewPath resolves path once; Selected returns nil when it is empty.
func NewPath(path string) *Path {
	p := &Path{path: path}
	if path != "" {
		p.file, p.err = FromPath(path)
	}
	return p
}

// Selected implements widget.FileSource.
func (p *Path) Selected() *models.SelectedFile {
	return p.file
}

// Err returns the error from resolving the path, if any.
func (p *Path) Err() error {
	return p.err
}
