package upload

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statement-analyzer/uploader/internal/models"
	"go.uber.org/zap"
)

// ErrInFlightLimit is returned by Begin when the in-flight limit is reached.
var ErrInFlightLimit = errors.New("upload already in progress")

// Manager records upload attempts and enforces how many may be in flight.
// Every attempt reaches exactly one terminal state; updates arriving after
// that are dropped.
type Manager struct {
	attempts    map[string]*models.Attempt
	mu          sync.RWMutex
	maxInFlight int
	inFlight    int
	logger      *zap.Logger
}

// NewManager creates a new attempt tracker. maxInFlight <= 0 means unlimited.
func NewManager(maxInFlight int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		attempts:    make(map[string]*models.Attempt),
		maxInFlight: maxInFlight,
		logger:      logger.With(zap.String("component", "upload")),
	}
}

// Begin registers a new uploading attempt for file.
func (m *Manager) Begin(file *models.SelectedFile) (models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxInFlight > 0 && m.inFlight >= m.maxInFlight {
		return models.Attempt{}, ErrInFlightLimit
	}

	attempt := models.NewAttempt(uuid.New().String(), file)
	m.attempts[attempt.ID] = attempt
	m.inFlight++

	m.logger.Info("attempt started",
		zap.String("attempt", shortID(attempt.ID)),
		zap.String("file", attempt.FileName),
		zap.Int64("size", attempt.Size),
	)
	return *attempt, nil
}

// UpdateProgress records progress for an uploading attempt. It reports
// false when the attempt is unknown, already terminal, or p would move the
// progress backwards.
func (m *Manager) UpdateProgress(id string, p models.UploadProgress) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[id]
	if !ok || attempt.State != models.StateUploading {
		return false
	}
	if p.Loaded < attempt.Progress.Loaded || p.Fraction < attempt.Progress.Fraction {
		return false
	}

	attempt.Progress = p
	return true
}

// MarkSucceeded moves an uploading attempt to succeeded with full progress.
func (m *Manager) MarkSucceeded(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.finish(id, models.StateSucceeded, models.Success(models.MessageUploadComplete))
	if !ok {
		return false
	}
	total := attempt.Progress.Total
	if total <= 0 {
		total = attempt.Size
	}
	attempt.Progress = models.ProgressComplete(total)

	m.logger.Info("attempt succeeded",
		zap.String("attempt", shortID(id)),
		zap.Duration("elapsed", attempt.CompletedAt.Sub(attempt.CreatedAt)),
	)
	return true
}

// MarkFailed moves an uploading attempt to failed and keeps cause for diagnostics.
func (m *Manager) MarkFailed(id string, cause error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.finish(id, models.StateFailed, models.Error(models.MessageUploadFailed))
	if !ok {
		return false
	}
	if cause != nil {
		attempt.Error = cause.Error()
	}

	m.logger.Warn("attempt failed",
		zap.String("attempt", shortID(id)),
		zap.Error(cause),
	)
	return true
}

// finish must be called with m.mu held.
func (m *Manager) finish(id string, state models.State, status models.UploadStatus) (*models.Attempt, bool) {
	attempt, ok := m.attempts[id]
	if !ok || attempt.State.Terminal() {
		return nil, false
	}

	now := time.Now()
	attempt.State = state
	attempt.Status = status
	attempt.CompletedAt = &now
	m.inFlight--
	return attempt, true
}

// Get returns a copy of the attempt with the given ID.
func (m *Manager) Get(id string) (models.Attempt, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attempt, ok := m.attempts[id]
	if !ok {
		return models.Attempt{}, false
	}
	return *attempt, true
}

// Recent returns up to limit attempts, newest first.
func (m *Manager) Recent(limit int) []models.Attempt {
	m.mu.RLock()
	list := make([]models.Attempt, 0, len(m.attempts))
	for _, attempt := range m.attempts {
		list = append(list, *attempt)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// InFlight returns the number of attempts still uploading.
func (m *Manager) InFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inFlight
}

// CleanupOldAttempts removes terminal attempts completed more than maxAge ago
// and returns how many were removed.
func (m *Manager) CleanupOldAttempts(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, attempt := range m.attempts {
		if attempt.State.Terminal() && attempt.CompletedAt != nil && attempt.CompletedAt.Before(cutoff) {
			delete(m.attempts, id)
			removed++
		}
	}
	return removed
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
