package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/google/uuid"
)

func newResult(o *dto.Outcome, runErr error, now time.Time) *entity.ModerationResult {
	result := &entity.ModerationResult{
		ID:        uuid.New(),
		Bucket:    o.Object.Bucket,
		Key:       o.Key,
		Category:  o.Category,
		Stage:     o.Stage,
		Flagged:   o.Verdict.Flagged,
		CreatedAt: now,
	}

	if o.Stage == entity.StageFailed {
		failedAt := o.FailedAt
		result.FailedAt = &failedAt
	}
	if o.DestinationKey != "" {
		dst := o.DestinationKey
		result.DestinationKey = &dst
	}
	if o.ReportKey != "" {
		report := o.ReportKey
		result.ReportKey = &report
	}
	if runErr != nil {
		msg := runErr.Error()
		result.Error = &msg
	}

	return result
}

func (uc *UseCase) createOutboxEvent(result *entity.ModerationResult, errKind string) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"id":              result.ID,
		"bucket":          result.Bucket,
		"key":             result.Key,
		"category":        result.Category,
		"stage":           result.Stage,
		"failed_at":       result.FailedAt,
		"verdict":         result.VerdictStatus(),
		"destination_key": result.DestinationKey,
		"report_key":      result.ReportKey,
		"error_kind":      errKind,
		"created_at":      result.CreatedAt,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("JournalUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: result.ID,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   result.CreatedAt,
		RetryCount:  0,
	}, nil
}
