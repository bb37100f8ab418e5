package models

import "time"

// Default values applied to a ResearchRequest when the client omits them
const (
	DefaultContentType = "article"
	DefaultPlatform    = "general"
	DefaultLanguage    = "en"
)

// ResearchRequest describes one content-research job submission.
// Immutable once accepted; defaults are filled in before key derivation.
type ResearchRequest struct {
	Topic       string `json:"topic"`
	ContentType string `json:"contentType"`
	Platform    string `json:"platform"`
	Language    string `json:"language"`
}

// ApplyDefaults fills empty optional fields with their defaults.
func (r *ResearchRequest) ApplyDefaults() {
	if r.ContentType == "" {
		r.ContentType = DefaultContentType
	}
	if r.Platform == "" {
		r.Platform = DefaultPlatform
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
}

// ResearchResult is the completed output of a research job. This is the
// payload stored in the result cache and returned on recovery.
type ResearchResult struct {
	Topic       string    `json:"topic"`
	ContentType string    `json:"contentType"`
	Platform    string    `json:"platform"`
	Language    string    `json:"language"`
	Research    string    `json:"research"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Job event types emitted on the progress stream. Every stream ends with
// exactly one terminal event (completed or error).
const (
	EventProgress  = "progress"
	EventCompleted = "completed"
	EventError     = "error"
)

// Error codes carried by ErrorPayload
const (
	ErrCodeValidation = "validation_error"
	ErrCodeProvider   = "provider_error"
)

// JobEvent is one frame on a job's progress stream.
type JobEvent struct {
	Type string
	Data interface{}
}

// ProgressPayload reports job liveness. Percentages are never fabricated;
// heartbeats repeat the last known stage.
type ProgressPayload struct {
	JobID    string `json:"jobId"`
	Progress int    `json:"progress"`
	Stage    string `json:"stage"`
}

// CompletedPayload is the terminal success event.
type CompletedPayload struct {
	JobID     string          `json:"jobId"`
	Result    *ResearchResult `json:"result"`
	FromCache bool            `json:"fromCache"`
}

// ErrorPayload is the terminal failure event.
type ErrorPayload struct {
	JobID string `json:"jobId"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Recovery match types
const (
	MatchExact   = "exact"
	MatchPartial = "partial"
)

// RecoveryResponse is the result of a post-disconnect completion check.
type RecoveryResponse struct {
	Found     bool            `json:"found"`
	MatchType string          `json:"matchType,omitempty"`
	Result    *ResearchResult `json:"result,omitempty"`
}
