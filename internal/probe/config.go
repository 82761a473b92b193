package probe

import (
	"time"

	"github.com/okian/launchdash/internal/domain/types"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Ranges  int           // Number of random payload ranges per site
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every passing check
}

// Summary is the body of GET /api/summary.
type Summary struct {
	types.DatasetSummary
	Slider types.SliderBounds `json:"slider"`
}

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Job is one scatter query to verify.
type Job struct {
	Site  string
	Range types.Range
}

// Failure describes one violated property.
type Failure struct {
	Check     string
	Site      string
	RequestID string
	Detail    string
}

// Stats holds probe statistics.
type Stats struct {
	Requests     int
	ChecksPassed int
	ChecksFailed int
	Failures     []Failure
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
