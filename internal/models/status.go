package models

// Severity classifies an UploadStatus for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Status messages shown to the user.
const (
	MessageNoFileSelected   = "Please select a PDF file."
	MessageWrongFileType    = "Only PDF files are allowed."
	MessageUploadInProgress = "An upload is already in progress."
	MessageUploading        = "Uploading..."
	MessageUploadComplete   = "Upload Complete!"
	MessageUploadFailed     = "Upload Failed!"
)

// UploadStatus is the message and severity of the most recent transition.
type UploadStatus struct {
	Message  string   `json:"message" msgpack:"message"`
	Severity Severity `json:"severity" msgpack:"severity"`
}

// IsZero reports whether no status has been set yet.
func (s UploadStatus) IsZero() bool {
	return s.Message == "" && s.Severity == ""
}

func Info(msg string) UploadStatus    { return UploadStatus{Message: msg, Severity: SeverityInfo} }
func Warning(msg string) UploadStatus { return UploadStatus{Message: msg, Severity: SeverityWarning} }
func Error(msg string) UploadStatus   { return UploadStatus{Message: msg, Severity: SeverityError} }
func Success(msg string) UploadStatus { return UploadStatus{Message: msg, Severity: SeveritySuccess} }
