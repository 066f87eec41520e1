package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/repo"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/google/uuid"
)

const _defaultRetention = 7 * 24 * time.Hour

// UseCase keeps the moderation journal and its outbox of result events.
type UseCase struct {
	resultRepo repo.ModerationResultRepo
	outboxRepo repo.OutboxModerationRepo
	transactor repo.Transactor

	retention time.Duration
	now       func() time.Time

	logger logger.Interface
}

func New(
	resultRepo repo.ModerationResultRepo,
	outboxRepo repo.OutboxModerationRepo,
	transactor repo.Transactor,
	retention time.Duration,
	l logger.Interface,
) *UseCase {
	if retention <= 0 {
		retention = _defaultRetention
	}

	return &UseCase{
		resultRepo: resultRepo,
		outboxRepo: outboxRepo,
		transactor: transactor,
		retention:  retention,
		now:        time.Now,
		logger:     l,
	}
}

// Record stores a finished pipeline run together with its outbox event.
func (uc *UseCase) Record(ctx context.Context, outcome *dto.Outcome, runErr error) (*entity.ModerationResult, error) {
	result := newResult(outcome, runErr, uc.now())

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.resultRepo.Create(ctx, result); err != nil {
			return fmt.Errorf("JournalUseCase - Record - uc.resultRepo.Create: %w", err)
		}

		event, err := uc.createOutboxEvent(result, errs.Kind(runErr))
		if err != nil {
			return fmt.Errorf("JournalUseCase - Record - uc.createOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("JournalUseCase - Record - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("JournalUseCase - Record - uc.transactor.WithinTransaction: %w", err)
	}

	return result, nil
}

func (uc *UseCase) ListByKey(ctx context.Context, key string, limit int) ([]*entity.ModerationResult, error) {
	results, err := uc.resultRepo.ListByKey(ctx, key, limit)
	if err != nil {
		return nil, fmt.Errorf("JournalUseCase - ListByKey - uc.resultRepo.ListByKey: %w", err)
	}

	return results, nil
}

func (uc *UseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("JournalUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *UseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("JournalUseCase - MarkAsProcessingBatch - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("JournalUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("JournalUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("JournalUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

// CleanupOutbox drops processed and failed events older than the retention period.
func (uc *UseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx, uc.now().Add(-uc.retention))
	if err != nil {
		return fmt.Errorf("JournalUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old outbox events, count = %d", count)
	}

	return nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}
