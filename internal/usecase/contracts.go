package usecase

import (
	"context"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
)

type (
	ModerationUseCase interface {
		// Moderate runs the pipeline for one object. The returned outcome is
		// never nil and tells how far the object got, also on error.
		Moderate(ctx context.Context, key string) (*dto.Outcome, error)
		LoadReport(ctx context.Context, key string) (*entity.ModerationRecord, entity.Verdict, error)
		// IsOutputKey reports whether key lies under one of the pipeline's own output prefixes.
		IsOutputKey(key string) bool
		Bucket() string
	}

	JournalUseCase interface {
		Record(ctx context.Context, outcome *dto.Outcome, runErr error) (*entity.ModerationResult, error)
		ListByKey(ctx context.Context, key string, limit int) ([]*entity.ModerationResult, error)
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}
)
