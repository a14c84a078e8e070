// doubles.go - Test doubles for the widget collaborators
package testutil

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/statement-analyzer/uploader/internal/models"
)

// FakeDisplay records everything the widget renders.
type FakeDisplay struct {
	mu        sync.Mutex
	statuses  []models.UploadStatus
	progress  []models.UploadProgress
	showCount int
}

// NewFakeDisplay creates an empty FakeDisplay.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

func (d *FakeDisplay) SetStatus(status models.UploadStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, status)
}

func (d *FakeDisplay) SetProgress(p models.UploadProgress) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.progress = append(d.progress, p)
}

func (d *FakeDisplay) ShowProgress() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showCount++
}

// Statuses returns every status shown, oldest first.
func (d *FakeDisplay) Statuses() []models.UploadStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.UploadStatus(nil), d.statuses...)
}

// LastStatus returns the most recent status, or the zero value.
func (d *FakeDisplay) LastStatus() models.UploadStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.statuses) == 0 {
		return models.UploadStatus{}
	}
	return d.statuses[len(d.statuses)-1]
}

// Fractions returns every progress fraction shown, oldest first.
func (d *FakeDisplay) Fractions() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]float64, len(d.progress))
	for i, p := range d.progress {
		out[i] = p.Fraction
	}
	return out
}

// ShowCount returns how often the progress bar was made visible.
func (d *FakeDisplay) ShowCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.showCount
}

// RecordingSink collects diagnostic payloads and errors.
type RecordingSink struct {
	mu       sync.Mutex
	payloads []any
	errs     []error
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Payload(_ context.Context, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
}

func (s *RecordingSink) Error(_ context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Payloads returns the payloads received so far.
func (s *RecordingSink) Payloads() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.payloads...)
}

// Errors returns the errors received so far.
func (s *RecordingSink) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// ScriptedTransport replays fixed progress events and then returns Payload
// or Err. When Release is non-nil the upload blocks until it is closed.
type ScriptedTransport struct {
	Events  []models.UploadProgress
	Payload any
	Err     error
	Release chan struct{}

	mu       sync.Mutex
	calls    int
	files    []*models.SelectedFile
	started  chan struct{}
	callback func(models.UploadProgress)
}

// NewScriptedTransport creates a transport that returns payload.
func NewScriptedTransport(payload any, events ...models.UploadProgress) *ScriptedTransport {
	return &ScriptedTransport{Events: events, Payload: payload, started: make(chan struct{}, 16)}
}

// NewFailingTransport creates a transport that fails with err.
func NewFailingTransport(err error) *ScriptedTransport {
	return &ScriptedTransport{Err: err, started: make(chan struct{}, 16)}
}

func (t *ScriptedTransport) Upload(ctx context.Context, file *models.SelectedFile, onProgress func(models.UploadProgress)) (any, error) {
	t.mu.Lock()
	t.calls++
	t.files = append(t.files, file)
	t.callback = onProgress
	if t.started == nil {
		t.started = make(chan struct{}, 16)
	}
	started := t.started
	t.mu.Unlock()

	select {
	case started <- struct{}{}:
	default:
	}

	// Read the body like a real transport would.
	if rc, err := file.Open(); err == nil {
		io.Copy(io.Discard, rc)
		rc.Close()
	}

	for _, ev := range t.Events {
		onProgress(ev)
	}

	if t.Release != nil {
		select {
		case <-t.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if t.Err != nil {
		return nil, t.Err
	}
	return t.Payload, nil
}

// Started returns a channel that receives once per Upload call.
func (t *ScriptedTransport) Started() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started == nil {
		t.started = make(chan struct{}, 16)
	}
	return t.started
}

// Callback returns the progress callback of the latest Upload call, so
// tests can deliver events after the upload returned.
func (t *ScriptedTransport) Callback() func(models.UploadProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.callback
}

// Calls returns how many uploads were attempted.
func (t *ScriptedTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Files returns the files passed to Upload.
func (t *ScriptedTransport) Files() []*models.SelectedFile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*models.SelectedFile(nil), t.files...)
}

// StaticSource is a FileSource with a fixed selection.
type StaticSource struct {
	File *models.SelectedFile
}

func (s StaticSource) Selected() *models.SelectedFile {
	return s.File
}

// ErrNetwork is a stand-in for a connection failure.
var ErrNetwork = errors.New("dial tcp 127.0.0.1:8089: connect: connection refused")

// PDF returns an in-memory PDF selection of the given size.
func PDF(name string, size int) *models.SelectedFile {
	data := make([]byte, size)
	copy(data, "%PDF-1.4\n")
	return models.NewSelectedFileFromBytes(name, models.PDFMIMEType, data)
}
