// errors.go - Failure taxonomy surfaced by the upload widget
package widget

import (
	"fmt"

	"github.com/statement-analyzer/uploader/internal/models"
)

// Kind identifies a class of widget failure.
type Kind string

const (
	KindNoFileSelected   Kind = "NO_FILE_SELECTED"
	KindWrongFileType    Kind = "WRONG_FILE_TYPE"
	KindUploadInProgress Kind = "UPLOAD_IN_PROGRESS"
	KindTransportFailure Kind = "TRANSPORT_FAILURE"
)

// Error is a widget failure. Pre-flight kinds never reach the network;
// TransportFailure wraps whatever went wrong while uploading.
type Error struct {
	Kind    Kind
	Message string
	Details string
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Preflight reports whether the failure was detected before any request was sent.
func (e *Error) Preflight() bool {
	return e.Kind != KindTransportFailure
}

// Status returns what the user sees for this failure. All transport
// failures collapse to the same message.
func (e *Error) Status() models.UploadStatus {
	if e.Preflight() {
		return models.Warning(e.Message)
	}
	return models.Error(e.Message)
}

// NewNoFileSelectedError is returned when the user submits without a file.
func NewNoFileSelectedError() *Error {
	return &Error{
		Kind:    KindNoFileSelected,
		Message: models.MessageNoFileSelected,
	}
}

// NewWrongFileTypeError is returned for any selection that is not a PDF.
func NewWrongFileTypeError(mimeType string) *Error {
	return &Error{
		Kind:    KindWrongFileType,
		Message: models.MessageWrongFileType,
		Details: fmt.Sprintf("got %q", mimeType),
	}
}

// NewUploadInProgressError is returned when a submission arrives while
// another attempt is still uploading.
func NewUploadInProgressError() *Error {
	return &Error{
		Kind:    KindUploadInProgress,
		Message: models.MessageUploadInProgress,
	}
}

// NewTransportFailure wraps a network, status or decode error.
func NewTransportFailure(cause error) *Error {
	err := &Error{
		Kind:    KindTransportFailure,
		Message: models.MessageUploadFailed,
		cause:   cause,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}
