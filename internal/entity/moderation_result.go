package entity

import (
	"time"

	"github.com/google/uuid"
)

// ModerationResult is a journal row describing one finished pipeline run.
type ModerationResult struct {
	ID uuid.UUID `json:"id"`

	Bucket   string   `json:"bucket"`
	Key      string   `json:"key"`
	Category Category `json:"category"`

	Stage    Stage  `json:"stage"` // done, failed
	FailedAt *Stage `json:"failed_at,omitempty"`
	Flagged  bool   `json:"flagged"`

	DestinationKey *string `json:"destination_key,omitempty"`
	ReportKey      *string `json:"report_key,omitempty"`
	Error          *string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// VerdictStatus is nil when the run failed before a verdict was reached.
func (r *ModerationResult) VerdictStatus() *string {
	reached := r.Stage == StageDone ||
		(r.Stage == StageFailed && r.FailedAt != nil && (*r.FailedAt == StageRouted || *r.FailedAt == StageReported))
	if !reached {
		return nil
	}

	status := Verdict{Flagged: r.Flagged}.Status()

	return &status
}
