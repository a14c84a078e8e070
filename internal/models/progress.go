package models

// UploadProgress is bytes sent over total bytes for the in-flight request.
type UploadProgress struct {
	Loaded        int64   `json:"loaded" msgpack:"loaded"`
	Total         int64   `json:"total" msgpack:"total"`
	Fraction      float64 `json:"fraction" msgpack:"fraction"` // 0.0 - 1.0
	Indeterminate bool    `json:"indeterminate,omitempty" msgpack:"indeterminate,omitempty"`
}

// NewUploadProgress computes the fraction for loaded/total. A non-positive
// total yields an indeterminate progress value.
func NewUploadProgress(loaded, total int64) UploadProgress {
	if total <= 0 {
		return UploadProgress{Loaded: loaded, Total: total, Indeterminate: true}
	}
	fraction := float64(loaded) / float64(total)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return UploadProgress{Loaded: loaded, Total: total, Fraction: fraction}
}

// ProgressReset is the value shown at the start of every attempt.
func ProgressReset() UploadProgress {
	return UploadProgress{}
}

// ProgressComplete is the value shown after a successful upload.
func ProgressComplete(total int64) UploadProgress {
	return UploadProgress{Loaded: total, Total: total, Fraction: 1}
}

// Percent returns the fraction as a percentage.
func (p UploadProgress) Percent() float64 {
	return p.Fraction * 100
}
