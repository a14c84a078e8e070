package filesource

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestFromPath_PDF(t *testing.T) {
	path := writeFile(t, "statement.pdf", []byte(minimalPDF))

	file, err := FromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "statement.pdf", file.Name)
	assert.Equal(t, int64(len(minimalPDF)), file.Size)
	assert.Equal(t, models.PDFMIMEType, file.MIMEType)

	rc, err := file.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, minimalPDF, string(data))
}

func TestFromPath_DetectsByContent(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
		want    string
	}{
		{name: "pdf without extension", file: "statement", content: []byte(minimalPDF), want: models.PDFMIMEType},
		{name: "png renamed to pdf", file: "photo.pdf", content: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), want: "image/png"},
		{name: "text renamed to pdf", file: "notes.pdf", content: []byte("just some notes\n"), want: "text/plain"},
		{name: "json renamed to pdf", file: "tables.pdf", content: []byte(`{"tables": []}`), want: "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := FromPath(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, file.MIMEType)
		})
	}
}

func TestFromPath_Errors(t *testing.T) {
	_, err := FromPath(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	_, err = FromPath(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestPath(t *testing.T) {
	empty := NewPath("")
	assert.Nil(t, empty.Selected())
	assert.NoError(t, empty.Err())

	missing := NewPath(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Nil(t, missing.Selected())
	assert.Error(t, missing.Err())

	ok := NewPath(writeFile(t, "a.pdf", []byte(minimalPDF)))
	require.NotNil(t, ok.Selected())
	assert.Equal(t, models.PDFMIMEType, ok.Selected().MIMEType)
}
