package models

// ExtractionStage identifies where an extraction attempt currently is
type ExtractionStage string

const (
	StageLoading    ExtractionStage = "loading"
	StageExtracting ExtractionStage = "extracting"
	StageComplete   ExtractionStage = "complete"
	StageError      ExtractionStage = "error"
)

// ExtractionProgress is reported to callers as frame extraction advances.
// Percent is monotonically increasing within a single extraction pass.
type ExtractionProgress struct {
	Stage   ExtractionStage `json:"stage"`
	Percent int             `json:"percent"`
	Message string          `json:"message,omitempty"`
}

// ExtractedFrame is a decoded video frame candidate for OCR
type ExtractedFrame struct {
	Base64      string `json:"base64"`
	TimestampMs int64  `json:"timestamp_ms"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// ExtractionResult is the deduplicated frame set handed back to the caller
type ExtractionResult struct {
	Frames          []ExtractedFrame `json:"frames"`
	SampledCount    int              `json:"sampled_count"`
	DurationSeconds float64          `json:"duration_seconds"`
}
