package upload

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfFile() *models.SelectedFile {
	return models.NewSelectedFileFromBytes("statement.pdf", models.PDFMIMEType, make([]byte, 100))
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(1, nil)

	attempt, err := m.Begin(pdfFile())
	require.NoError(t, err)
	assert.NotEmpty(t, attempt.ID)
	assert.Equal(t, models.StateUploading, attempt.State)
	assert.Equal(t, models.Info(models.MessageUploading), attempt.Status)
	assert.Equal(t, "statement.pdf", attempt.FileName)
	assert.Equal(t, 1, m.InFlight())

	assert.True(t, m.UpdateProgress(attempt.ID, models.NewUploadProgress(10, 100)))
	assert.True(t, m.UpdateProgress(attempt.ID, models.NewUploadProgress(55, 100)))
	assert.False(t, m.UpdateProgress(attempt.ID, models.NewUploadProgress(20, 100)), "progress must not go backwards")

	require.True(t, m.MarkSucceeded(attempt.ID))
	assert.Equal(t, 0, m.InFlight())

	got, ok := m.Get(attempt.ID)
	require.True(t, ok)
	assert.Equal(t, models.StateSucceeded, got.State)
	assert.Equal(t, 1.0, got.Progress.Fraction)
	assert.Equal(t, models.Success(models.MessageUploadComplete), got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestManager_SingleTerminalEvent(t *testing.T) {
	m := NewManager(0, nil)
	attempt, err := m.Begin(pdfFile())
	require.NoError(t, err)

	require.True(t, m.MarkFailed(attempt.ID, errors.New("connection refused")))
	assert.False(t, m.MarkSucceeded(attempt.ID))
	assert.False(t, m.MarkFailed(attempt.ID, errors.New("again")))
	assert.False(t, m.UpdateProgress(attempt.ID, models.NewUploadProgress(100, 100)))

	got, _ := m.Get(attempt.ID)
	assert.Equal(t, models.StateFailed, got.State)
	assert.Equal(t, "connection refused", got.Error)
	assert.Equal(t, models.Error(models.MessageUploadFailed), got.Status)
}

func TestManager_InFlightLimit(t *testing.T) {
	m := NewManager(1, nil)

	first, err := m.Begin(pdfFile())
	require.NoError(t, err)

	_, err = m.Begin(pdfFile())
	assert.ErrorIs(t, err, ErrInFlightLimit)

	m.MarkSucceeded(first.ID)
	_, err = m.Begin(pdfFile())
	assert.NoError(t, err)
}

func TestManager_Unlimited(t *testing.T) {
	m := NewManager(0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := m.Begin(pdfFile())
			if assert.NoError(t, err) {
				m.MarkSucceeded(a.ID)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, m.InFlight())
	assert.Len(t, m.Recent(0), 20)
	assert.Len(t, m.Recent(5), 5)
}

func TestManager_UnknownAttempt(t *testing.T) {
	m := NewManager(1, nil)
	assert.False(t, m.UpdateProgress("missing", models.NewUploadProgress(1, 2)))
	assert.False(t, m.MarkSucceeded("missing"))
	assert.False(t, m.MarkFailed("missing", nil))
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestManager_RecentOrder(t *testing.T) {
	m := NewManager(0, nil)
	first, _ := m.Begin(pdfFile())
	time.Sleep(2 * time.Millisecond)
	second, _ := m.Begin(pdfFile())

	recent := m.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)
}

func TestManager_CleanupOldAttempts(t *testing.T) {
	m := NewManager(0, nil)

	done, _ := m.Begin(pdfFile())
	m.MarkSucceeded(done.ID)
	running, _ := m.Begin(pdfFile())

	// Nothing is old enough yet.
	assert.Equal(t, 0, m.CleanupOldAttempts(time.Hour))

	time.Sleep(2 * time.Millisecond)
	assert.Equal(t, 1, m.CleanupOldAttempts(time.Millisecond))

	_, ok := m.Get(done.ID)
	assert.False(t, ok)
	_, ok = m.Get(running.ID)
	assert.True(t, ok, "in-flight attempts are never cleaned up")
}
