package response

import (
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
)

type Moderation struct {
	ID             string `json:"id,omitempty"`
	Bucket         string `json:"bucket"`
	Key            string `json:"key"`
	Category       string `json:"category"`
	Stage          string `json:"stage"`
	Verdict        string `json:"verdict"`
	DestinationKey string `json:"destination_key"`
	ReportKey      string `json:"report_key"`
}

func NewModeration(o *dto.Outcome, result *entity.ModerationResult) Moderation {
	resp := Moderation{
		Bucket:         o.Object.Bucket,
		Key:            o.Key,
		Category:       string(o.Category),
		Stage:          string(o.Stage),
		Verdict:        o.Verdict.Status(),
		DestinationKey: o.DestinationKey,
		ReportKey:      o.ReportKey,
	}
	if result != nil {
		resp.ID = result.ID.String()
	}

	return resp
}

type JournalEntry struct {
	ID             string  `json:"id"`
	Category       string  `json:"category"`
	Stage          string  `json:"stage"`
	FailedAt       *string `json:"failed_at,omitempty"`
	Verdict        *string `json:"verdict"` // null when the run failed before a verdict
	DestinationKey *string `json:"destination_key,omitempty"`
	ReportKey      *string `json:"report_key,omitempty"`
	Error          *string `json:"error,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type Moderations struct {
	Key     string         `json:"key"`
	Results []JournalEntry `json:"results"`
}

func NewModerations(key string, results []*entity.ModerationResult) Moderations {
	resp := Moderations{Key: key, Results: make([]JournalEntry, 0, len(results))}

	for _, r := range results {
		entry := JournalEntry{
			ID:             r.ID.String(),
			Category:       string(r.Category),
			Stage:          string(r.Stage),
			Verdict:        r.VerdictStatus(),
			DestinationKey: r.DestinationKey,
			ReportKey:      r.ReportKey,
			Error:          r.Error,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		}
		if r.FailedAt != nil {
			failedAt := string(*r.FailedAt)
			entry.FailedAt = &failedAt
		}
		resp.Results = append(resp.Results, entry)
	}

	return resp
}

type Report struct {
	Verdict string                   `json:"verdict"`
	Record  *entity.ModerationRecord `json:"record"`
}
