// Package display renders widget status and progress on a terminal.
package display

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/statement-analyzer/uploader/internal/models"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorOrange = "\x1b[33m"
)

// Terminal writes one line per status and a single progress bar per attempt.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	bar   *progressbar.ProgressBar
	err   error
}

// NewTerminal creates a Terminal writing to out. color enables ANSI colours.
func NewTerminal(out io.Writer, color bool) *Terminal {
	return &Terminal{out: out, color: color}
}

// SetStatus prints the status message.
func (t *Terminal) SetStatus(status models.UploadStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar != nil && status.Severity != models.SeverityInfo {
		// Finish the bar line before the outcome is printed.
		fmt.Fprintln(t.out)
	}

	if t.color {
		fmt.Fprintf(t.out, "%s%s%s\n", severityColor(status.Severity), status.Message, colorReset)
		return
	}
	fmt.Fprintf(t.out, "[%s] %s\n", status.Severity, status.Message)
}

// ShowProgress makes a fresh progress bar visible.
func (t *Terminal) ShowProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("upload"),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(t.color),
	)
}

// SetProgress moves the bar to p.
func (t *Terminal) SetProgress(p models.UploadProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar == nil || p.Indeterminate {
		return
	}
	if err := t.bar.Set(int(math.Round(p.Percent()))); err != nil {
		t.err = err
	}
}

// Err returns the last error from rendering the progress bar.
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func severityColor(s models.Severity) string {
	switch s {
	case models.SeveritySuccess:
		return colorGreen
	case models.SeverityInfo:
		return colorOrange
	default:
		return colorRed
	}
}
