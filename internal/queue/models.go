package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a run ledger item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusLocating     Status = "locating"
	StatusLocated      Status = "located"
	StatusDrafting     Status = "drafting"
	StatusDrafted      Status = "drafted"
	StatusPackaging    Status = "packaging"
	StatusPackaged     Status = "packaged"
	StatusPublishing   Status = "publishing"
	StatusPublished    Status = "published"
	StatusCleaning     Status = "cleaning"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusTranscribing,
	StatusTranscribed,
	StatusLocating,
	StatusLocated,
	StatusDrafting,
	StatusDrafted,
	StatusPackaging,
	StatusPackaged,
	StatusPublishing,
	StatusPublished,
	StatusCleaning,
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
	StatusTranscribing: {},
	StatusLocating:     {},
	StatusDrafting:     {},
	StatusPackaging:    {},
	StatusPublishing:   {},
	StatusCleaning:     {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map in-flight statuses back to the last durable
// checkpoint when a previous run died mid-stage.
var stageRollbackTransitions = []statusTransition{
	{from: StatusTranscribing, to: StatusPending},
	{from: StatusLocating, to: StatusTranscribed},
	{from: StatusDrafting, to: StatusLocated},
	{from: StatusPackaging, to: StatusDrafted},
	{from: StatusPublishing, to: StatusPackaged},
	{from: StatusCleaning, to: StatusPublished},
}

func processingRollbackTransitions() []statusTransition {
	return stageRollbackTransitions
}

// HealthSummary describes aggregated ledger counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Item represents one video reference moving through the pipeline, persisted
// in SQLite. The remote playlist remains the source of truth for membership;
// the ledger only records local progress.
type Item struct {
	ID               int64
	VideoID          string
	PlaylistItemID   string
	Title            string
	SourceURL        string
	Status           Status
	ArtifactDir      string
	TranscriptPath   string
	MediaFile        string
	DraftTitle       string
	DraftDescription string
	DraftConfidence  float64
	DraftUncertain   bool
	SoftSuccess      bool
	RecordPath       string
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

// IsProcessing returns true when the status reflects an in-flight stage.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// SetProgress updates the progress fields together.
func (i *Item) SetProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressMessage = message
}
