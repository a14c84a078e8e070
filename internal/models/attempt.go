package models

import "time"

// State is the widget state for the current attempt.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateUploading  State = "uploading"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions happen for the attempt.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Attempt is one upload attempt as recorded by the attempt tracker.
type Attempt struct {
	ID          string         `json:"id" msgpack:"id"`
	FileName    string         `json:"fileName" msgpack:"fileName"`
	Size        int64          `json:"size" msgpack:"size"`
	MIMEType    string         `json:"mimeType,omitempty" msgpack:"mimeType,omitempty"`
	State       State          `json:"state" msgpack:"state"`
	Progress    UploadProgress `json:"progress" msgpack:"progress"`
	Status      UploadStatus   `json:"status" msgpack:"status"`
	Error       string         `json:"error,omitempty" msgpack:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" msgpack:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty" msgpack:"completedAt,omitempty"`
}

// NewAttempt creates an Attempt in the uploading state.
func NewAttempt(id string, file *SelectedFile) *Attempt {
	a := &Attempt{
		ID:        id,
		State:     StateUploading,
		Progress:  ProgressReset(),
		Status:    Info(MessageUploading),
		CreatedAt: time.Now(),
	}
	if file != nil {
		a.FileName = file.Name
		a.Size = file.Size
		a.MIMEType = file.MIMEType
	}
	return a
}
