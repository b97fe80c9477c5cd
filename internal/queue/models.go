package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusCollecting   Status = "collecting"
	StatusCollected    Status = "collected"
	StatusDecoding     Status = "decoding"
	StatusDecoded      Status = "decoded"
	StatusNormalizing  Status = "normalizing"
	StatusNormalized   Status = "normalized"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusRecording    Status = "recording"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// AbortReason is the error message set when items are failed because the run
// was interrupted before they reached a terminal state.
const AbortReason = "Run aborted"

var allStatuses = []Status{
	StatusPending,
	StatusCollecting,
	StatusCollected,
	StatusDecoding,
	StatusDecoded,
	StatusNormalizing,
	StatusNormalized,
	StatusTranscribing,
	StatusTranscribed,
	StatusRecording,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusCollecting:   {},
	StatusDecoding:     {},
	StatusNormalizing:  {},
	StatusTranscribing: {},
	StatusRecording:    {},
}

// Item represents a pipeline item persisted in SQLite. One item exists per
// located asset; it tracks the asset from staging through transcription.
type Item struct {
	ID               int64
	RunID            string
	Filename         string
	SourcePath       string
	StagedPath       string
	DecodedPath      string
	OutputPath       string
	Transcript       string
	DetectedLanguage string
	Status           Status
	ErrorMessage     string
	ProgressStage    string
	ProgressMessage  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status ends an item's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// SetProgress updates the progress fields together.
func (i *Item) SetProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
}

// SetFailed marks the item as failed with the given error message. The
// staged source copy is deliberately left on disk for manual inspection.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressMessage = message
}
