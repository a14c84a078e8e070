// Package widget implements the PDF upload widget: it validates a selected
// file, submits it through a Transport and reflects progress and outcome on
// a Display.
package widget

import (
	"context"
	"sync"

	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/statement-analyzer/uploader/internal/upload"
	"go.uber.org/zap"
)

// FileSource supplies the current selection. Selected returns nil when
// nothing is selected.
type FileSource interface {
	Selected() *models.SelectedFile
}

// Display renders status text and the progress bar. Implementations must
// not call back into the Widget.
type Display interface {
	SetStatus(status models.UploadStatus)
	SetProgress(p models.UploadProgress)
	ShowProgress()
}

// DiagnosticSink receives the decoded success payload or the failure.
// The widget does not interpret either.
type DiagnosticSink interface {
	Payload(ctx context.Context, payload any)
	Error(ctx context.Context, err error)
}

// Transport performs the upload request and returns the decoded JSON reply.
type Transport interface {
	Upload(ctx context.Context, file *models.SelectedFile, onProgress func(models.UploadProgress)) (any, error)
}

// Widget drives one upload attempt at a time through
// idle -> validating -> uploading -> succeeded | failed.
type Widget struct {
	files        FileSource
	display      Display
	sink         DiagnosticSink
	transport    Transport
	attempts     *upload.Manager
	acceptedType string
	logger       *zap.Logger

	mu       sync.Mutex
	state    models.State
	status   models.UploadStatus
	progress models.UploadProgress
	current  string
	done     chan struct{}
}

// Option customises a Widget.
type Option func(*Widget)

// WithLogger sets the logger used for widget events.
func WithLogger(l *zap.Logger) Option {
	return func(w *Widget) {
		w.logger = l
	}
}

// WithAttemptTracker records attempts in m instead of a private tracker.
// m should allow a single in-flight attempt.
func WithAttemptTracker(m *upload.Manager) Option {
	return func(w *Widget) {
		w.attempts = m
	}
}

// WithAcceptedType overrides the accepted MIME type.
func WithAcceptedType(mimeType string) Option {
	return func(w *Widget) {
		if mimeType != "" {
			w.acceptedType = mimeType
		}
	}
}

// New creates a Widget. files may be nil when the host always calls OnSubmit
// with an explicit selection.
func New(files FileSource, display Display, sink DiagnosticSink, transport Transport, opts ...Option) *Widget {
	w := &Widget{
		files:        files,
		display:      display,
		sink:         sink,
		transport:    transport,
		acceptedType: models.PDFMIMEType,
		state:        models.StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.attempts == nil {
		w.attempts = upload.NewManager(1, w.logger)
	}
	w.logger = w.logger.With(zap.String("component", "widget"))
	return w
}

// Click handles the submit control: it reads the current selection from the
// FileSource and passes it to OnSubmit.
func (w *Widget) Click(ctx context.Context) models.UploadStatus {
	var sel *models.SelectedFile
	if w.files != nil {
		sel = w.files.Selected()
	}
	return w.OnSubmit(ctx, sel)
}

// OnSubmit validates sel and, when it is a PDF, starts uploading it in the
// background. The returned status is either a pre-flight warning or
// "Uploading..."; use Wait for the outcome.
func (w *Widget) OnSubmit(ctx context.Context, sel *models.SelectedFile) models.UploadStatus {
	w.mu.Lock()

	if w.state == models.StateUploading {
		w.mu.Unlock()
		return w.rejectDuplicate()
	}

	w.state = models.StateValidating
	if verr := w.validate(sel); verr != nil {
		status := verr.Status()
		w.state = models.StateIdle
		w.status = status
		w.display.SetStatus(status)
		w.mu.Unlock()

		w.logger.Debug("selection rejected", zap.String("kind", string(verr.Kind)), zap.String("details", verr.Details))
		return status
	}

	id, done, ok := w.beginLocked(sel)
	status := w.status
	w.mu.Unlock()
	if !ok {
		return w.rejectDuplicate()
	}

	go w.run(ctx, id, sel, done)
	return status
}

// Submit uploads sel and blocks until the attempt is terminal. It skips the
// type check but still refuses a nil selection or running next to an
// in-flight attempt.
func (w *Widget) Submit(ctx context.Context, sel *models.SelectedFile) models.UploadStatus {
	w.mu.Lock()
	if w.state == models.StateUploading {
		w.mu.Unlock()
		return w.rejectDuplicate()
	}
	if sel == nil {
		status := NewNoFileSelectedError().Status()
		w.state = models.StateIdle
		w.status = status
		w.display.SetStatus(status)
		w.mu.Unlock()
		return status
	}
	id, done, ok := w.beginLocked(sel)
	w.mu.Unlock()
	if !ok {
		return w.rejectDuplicate()
	}

	return w.run(ctx, id, sel, done)
}

// Wait blocks until the in-flight attempt, if any, is terminal and returns
// the latest status.
func (w *Widget) Wait() models.UploadStatus {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()

	if done != nil {
		<-done
	}
	return w.Status()
}

// Status returns the status of the most recent transition.
func (w *Widget) Status() models.UploadStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// State returns the current state.
func (w *Widget) State() models.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Progress returns the last progress value shown.
func (w *Widget) Progress() models.UploadProgress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// CurrentAttempt returns the tracker record of the latest attempt.
func (w *Widget) CurrentAttempt() (models.Attempt, bool) {
	w.mu.Lock()
	id := w.current
	w.mu.Unlock()
	if id == "" {
		return models.Attempt{}, false
	}
	return w.attempts.Get(id)
}

func (w *Widget) validate(sel *models.SelectedFile) *Error {
	if sel == nil {
		return NewNoFileSelectedError()
	}
	if sel.MIMEType != w.acceptedType {
		return NewWrongFileTypeError(sel.MIMEType)
	}
	return nil
}

// beginLocked moves the widget to uploading. Must be called with w.mu held.
func (w *Widget) beginLocked(sel *models.SelectedFile) (string, chan struct{}, bool) {
	attempt, err := w.attempts.Begin(sel)
	if err != nil {
		if w.state == models.StateValidating {
			w.state = models.StateIdle
		}
		return "", nil, false
	}

	w.state = models.StateUploading
	w.current = attempt.ID
	w.done = make(chan struct{})
	w.status = models.Info(models.MessageUploading)
	w.progress = models.ProgressReset()

	w.display.SetStatus(w.status)
	w.display.ShowProgress()
	w.display.SetProgress(w.progress)

	return attempt.ID, w.done, true
}

func (w *Widget) rejectDuplicate() models.UploadStatus {
	err := NewUploadInProgressError()
	w.logger.Debug("submission rejected", zap.String("kind", string(err.Kind)))
	return err.Status()
}

func (w *Widget) run(ctx context.Context, id string, sel *models.SelectedFile, done chan struct{}) models.UploadStatus {
	defer close(done)

	payload, err := w.transport.Upload(ctx, sel, func(p models.UploadProgress) {
		w.onProgress(id, p)
	})
	if err != nil {
		return w.fail(ctx, id, err)
	}
	return w.succeed(ctx, id, sel, payload)
}

func (w *Widget) onProgress(id string, p models.UploadProgress) {
	// Leave the bar untouched when the total is unknown.
	if p.Indeterminate {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != id || w.state != models.StateUploading {
		return
	}
	if !w.attempts.UpdateProgress(id, p) {
		return
	}
	w.progress = p
	w.display.SetProgress(p)
}

func (w *Widget) succeed(ctx context.Context, id string, sel *models.SelectedFile, payload any) models.UploadStatus {
	w.mu.Lock()
	w.attempts.MarkSucceeded(id)

	total := w.progress.Total
	if total <= 0 {
		total = sel.Size
	}
	w.state = models.StateSucceeded
	w.status = models.Success(models.MessageUploadComplete)
	w.progress = models.ProgressComplete(total)
	// The bar completes before the terminal status is shown.
	w.display.SetProgress(w.progress)
	w.display.SetStatus(w.status)
	status := w.status
	w.mu.Unlock()

	w.sink.Payload(ctx, payload)
	return status
}

func (w *Widget) fail(ctx context.Context, id string, cause error) models.UploadStatus {
	failure := NewTransportFailure(cause)

	w.mu.Lock()
	w.attempts.MarkFailed(id, cause)
	w.state = models.StateFailed
	w.status = failure.Status()
	w.display.SetStatus(w.status)
	status := w.status
	w.mu.Unlock()

	w.sink.Error(ctx, failure)
	return status
}
