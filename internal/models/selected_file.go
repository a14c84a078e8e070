package models

import (
	"bytes"
	"errors"
	"io"
)

// PDFMIMEType is the only content type the widget accepts.
const PDFMIMEType = "application/pdf"

// SelectedFile is the file currently chosen by the user. The widget only
// holds it for the duration of one validation and submission.
type SelectedFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"` // -1 when unknown
	MIMEType string `json:"mimeType"`

	open func() (io.ReadCloser, error)
}

// NewSelectedFile creates a SelectedFile whose content is produced by open.
func NewSelectedFile(name string, size int64, mimeType string, open func() (io.ReadCloser, error)) *SelectedFile {
	return &SelectedFile{
		Name:     name,
		Size:     size,
		MIMEType: mimeType,
		open:     open,
	}
}

// NewSelectedFileFromBytes creates an in-memory SelectedFile.
func NewSelectedFileFromBytes(name, mimeType string, data []byte) *SelectedFile {
	return NewSelectedFile(name, int64(len(data)), mimeType, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// Open returns a fresh reader over the file content.
func (f *SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errors.New("selected file has no content")
	}
	return f.open()
}

// SizeKnown reports whether the byte size of the file is available.
func (f *SelectedFile) SizeKnown() bool {
	return f.Size >= 0
}
