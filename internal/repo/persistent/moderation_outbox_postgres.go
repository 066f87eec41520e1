package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/postgres"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	// Table
	outboxTable = "moderation_outbox"

	// Columns
	outboxIDColumn          = "id"
	outboxAggregateIDColumn = "aggregate_id"
	outboxPayloadColumn     = "payload"
	outboxStatusColumn      = "status"
	outboxCreatedAtColumn   = "created_at"
	outboxProcessedAtColumn = "processed_at"
	outboxRetryCountColumn  = "retry_count"
)

type OutboxModerationRepo struct {
	*postgres.Postgres
}

func NewOutboxModerationRepo(pg *postgres.Postgres) *OutboxModerationRepo {
	return &OutboxModerationRepo{pg}
}

func (r *OutboxModerationRepo) Create(ctx context.Context, event *entity.OutboxEvent) error {
	sql, args, err := r.Builder.
		Insert(outboxTable).
		Columns(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxStatusColumn,
			outboxCreatedAtColumn,
			outboxRetryCountColumn,
		).
		Values(
			event.ID,
			event.AggregateID,
			event.Payload,
			event.Status,
			event.CreatedAt,
			event.RetryCount,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxModerationRepo - Create - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxModerationRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

// GetPendingEvents returns the oldest pending events that still have retries left.
func (r *OutboxModerationRepo) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	sql, args, err := r.Builder.
		Select(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxStatusColumn,
			outboxCreatedAtColumn,
			outboxProcessedAtColumn,
			outboxRetryCountColumn,
		).
		From(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: entity.Pending},
			squirrel.Lt{outboxRetryCountColumn: maxRetries},
		}).
		OrderBy(outboxCreatedAtColumn + " ASC").
		Limit(uint64(limit)). //nolint:gosec // positive by config
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxModerationRepo - GetPendingEvents - r.Builder.ToSql: %w", err)
	}

	rows, err := r.GetExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OutboxModerationRepo - GetPendingEvents - executor.Query: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.OutboxEvent, 0, limit)
	for rows.Next() {
		var event entity.OutboxEvent
		err = rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.Payload,
			&event.Status,
			&event.CreatedAt,
			&event.ProcessedAt,
			&event.RetryCount,
		)
		if err != nil {
			return nil, fmt.Errorf("OutboxModerationRepo - GetPendingEvents - rows.Scan: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("OutboxModerationRepo - GetPendingEvents - rows.Err: %w", err)
	}

	return events, nil
}

func (r *OutboxModerationRepo) MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return r.updateBatch(ctx, "MarkAsProcessingBatch", IDs, map[string]any{
		outboxStatusColumn: entity.Processing,
	})
}

func (r *OutboxModerationRepo) MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return r.updateBatch(ctx, "MarkAsProcessedBatch", IDs, map[string]any{
		outboxStatusColumn:      entity.Processed,
		outboxProcessedAtColumn: time.Now(),
	})
}

// IncrementRetryCountBatch returns the events to pending with one more retry spent.
func (r *OutboxModerationRepo) IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return r.updateBatch(ctx, "IncrementRetryCountBatch", IDs, map[string]any{
		outboxRetryCountColumn: squirrel.Expr(outboxRetryCountColumn + " + 1"),
		outboxStatusColumn:     entity.Pending,
	})
}

func (r *OutboxModerationRepo) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		Set(outboxStatusColumn, entity.Failed).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: entity.Pending},
			squirrel.GtOrEq{outboxRetryCountColumn: maxRetries},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxModerationRepo - MarkMaxRetriesAsFailed - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxModerationRepo - MarkMaxRetriesAsFailed - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxModerationRepo) DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Time) (int64, error) {
	sql, args, err := r.Builder.
		Delete(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: []entity.Status{entity.Processed, entity.Failed}},
			squirrel.Lt{outboxCreatedAtColumn: olderThan},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("OutboxModerationRepo - DeleteOldProcessedAndFailed - r.Builder.ToSql: %w", err)
	}

	tag, err := r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("OutboxModerationRepo - DeleteOldProcessedAndFailed - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *OutboxModerationRepo) updateBatch(ctx context.Context, op string, IDs uuid.UUIDs, set map[string]any) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		SetMap(set).
		Where(squirrel.Eq{outboxIDColumn: IDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxModerationRepo - %s - r.Builder.ToSql: %w", op, err)
	}

	tag, err := r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxModerationRepo - %s - executor.Exec: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OutboxModerationRepo - %s: %w", op, errs.ErrRecordNotFound)
	}

	return nil
}
