// Package diag provides diagnostic sinks for upload payloads and failures.
package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Sink receives the decoded success payload or the failure of an upload.
type Sink interface {
	Payload(ctx context.Context, payload any)
	Error(ctx context.Context, err error)
}

// Format selects how ConsoleSink renders payloads.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a payload format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown diagnostic format %q (want json or yaml)", s)
	}
}

// ConsoleSink prints payloads to out and errors to errOut.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	format Format
}

// NewConsoleSink creates a ConsoleSink.
func NewConsoleSink(out, errOut io.Writer, format Format) *ConsoleSink {
	if format == "" {
		format = FormatJSON
	}
	return &ConsoleSink{out: out, errOut: errOut, format: format}
}

// Payload writes payload in the configured format.
func (s *ConsoleSink) Payload(_ context.Context, payload any) {
	var (
		data []byte
		err  error
	)
	switch s.format {
	case FormatYAML:
		data, err = yaml.Marshal(payload)
	default:
		data, err = json.MarshalIndent(payload, "", "  ")
		data = append(data, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		fmt.Fprintf(s.errOut, "cannot render payload: %v\n", err)
		return
	}
	s.out.Write(data)
}

// Error writes err as a single line.
func (s *ConsoleSink) Error(_ context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.errOut, "upload error: %v\n", err)
}

// LogSink records payloads and errors through zap.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.With(zap.String("component", "diagnostics"))}
}

func (s *LogSink) Payload(_ context.Context, payload any) {
	s.logger.Info("upload response", zap.Any("payload", payload))
}

func (s *LogSink) Error(_ context.Context, err error) {
	s.logger.Error("upload error", zap.Error(err))
}

type fanout []Sink

// Fanout forwards to every non-nil sink in order.
func Fanout(sinks ...Sink) Sink {
	var out fanout
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanout) Payload(ctx context.Context, payload any) {
	for _, s := range f {
		s.Payload(ctx, payload)
	}
}

func (f fanout) Error(ctx context.Context, err error) {
	for _, s := range f {
		s.Error(ctx, err)
	}
}
