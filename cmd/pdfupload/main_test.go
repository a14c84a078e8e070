package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	configPath := filepath.Join(t.TempDir(), configFileName)
	full := append([]string{"-config", configPath, "-no-color"}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var statementPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func TestRun_Success(t *testing.T) {
	srv, hits := newUploadServer(t, http.StatusOK, `{"transactions": 2}`)
	pdf := writeFile(t, t.TempDir(), "statement.pdf", statementPDF)

	code, stdout, _ := runCLI(t, "-url", srv.URL, pdf)

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, stdout, "[info] Uploading...")
	assert.Contains(t, stdout, "[success] Upload Complete!")
	assert.Contains(t, stdout, `"transactions": 2`)
}

func TestRun_YAMLPayload(t *testing.T) {
	srv, _ := newUploadServer(t, http.StatusOK, `{"transactions": 2}`)
	pdf := writeFile(t, t.TempDir(), "statement.pdf", statementPDF)

	code, stdout, _ := runCLI(t, "-url", srv.URL, "-format", "yaml", pdf)

	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "transactions: 2")
}

func TestRun_Warnings(t *testing.T) {
	srv, hits := newUploadServer(t, http.StatusOK, `{}`)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no file",
			args: []string{"-url", srv.URL},
			want: "[warning] " + models.MessageNoFileSelected,
		},
		{
			name: "text renamed to pdf",
			args: []string{"-url", srv.URL, writeFile(t, dir, "notes.pdf", []byte("just some notes\n"))},
			want: "[warning] " + models.MessageWrongFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, tt.args...)

			assert.Equal(t, exitWarning, code)
			assert.Contains(t, stdout, tt.want)
		})
	}

	assert.Equal(t, int32(0), hits.Load(), "no request may be sent for a rejected selection")
}

func TestRun_ServerRejects(t *testing.T) {
	srv, hits := newUploadServer(t, http.StatusInternalServerError, `{"error": "cannot parse"}`)
	pdf := writeFile(t, t.TempDir(), "statement.pdf", statementPDF)

	code, stdout, stderr := runCLI(t, "-url", srv.URL, pdf)

	assert.Equal(t, exitFailure, code)
	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, stdout, "[error] Upload Failed!")
	assert.Contains(t, stderr, "upload error:")
	assert.Contains(t, stderr, "status 500")
}

func TestRun_SetupErrors(t *testing.T) {
	pdf := writeFile(t, t.TempDir(), "statement.pdf", statementPDF)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing file",
			args:     []string{filepath.Join(t.TempDir(), "missing.pdf")},
			wantCode: exitFailure,
			wantErr:  "pdfupload:",
		},
		{
			name:     "unknown format",
			args:     []string{"-format", "xml", pdf},
			wantCode: exitFailure,
			wantErr:  "unknown diagnostic format",
		},
		{
			name:     "invalid url",
			args:     []string{"-url", "ftp://example.com", pdf},
			wantCode: exitFailure,
			wantErr:  "pdfupload:",
		},
		{
			name:     "invalid log level flag",
			args:     []string{"-log-level", "loud", pdf},
			wantCode: exitFailure,
			wantErr:  "parsing log level",
		},
		{
			name:     "too many arguments",
			args:     []string{pdf, pdf},
			wantCode: exitWarning,
			wantErr:  "Usage: pdfupload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_LogLevelFromConfig(t *testing.T) {
	pdf := writeFile(t, t.TempDir(), "statement.pdf", statementPDF)
	configPath := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(configPath, []byte(
		`<PDFUploader><Advanced><LogLevel>loud</LogLevel></Advanced></PDFUploader>`), 0644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, "-no-color", pdf}, &stdout, &stderr)

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "parsing log level")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		status models.UploadStatus
		want   int
	}{
		{models.Success(models.MessageUploadComplete), exitSuccess},
		{models.Error(models.MessageUploadFailed), exitFailure},
		{models.Warning(models.MessageWrongFileType), exitWarning},
		{models.Info(models.MessageUploading), exitFailure},
	}

	for _, tt := range tests {
		t.Run(string(tt.status.Severity), func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.status))
		})
	}
}
