package persistent

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/postgres"
)

const (
	// Table
	resultsTable = "moderation_results"

	// Columns
	idColumn             = "id"
	bucketColumn         = "bucket"
	keyColumn            = "object_key"
	categoryColumn       = "category"
	stageColumn          = "stage"
	failedAtColumn       = "failed_at"
	flaggedColumn        = "flagged"
	destinationKeyColumn = "destination_key"
	reportKeyColumn      = "report_key"
	errorColumn          = "error"
	createdAtColumn      = "created_at"
)

type ModerationResultRepo struct {
	*postgres.Postgres
}

func NewModerationResultRepo(pg *postgres.Postgres) *ModerationResultRepo {
	return &ModerationResultRepo{pg}
}

func (r *ModerationResultRepo) Create(ctx context.Context, result *entity.ModerationResult) error {
	sql, args, err := r.Builder.
		Insert(resultsTable).
		Columns(
			idColumn,
			bucketColumn,
			keyColumn,
			categoryColumn,
			stageColumn,
			failedAtColumn,
			flaggedColumn,
			destinationKeyColumn,
			reportKeyColumn,
			errorColumn,
			createdAtColumn,
		).
		Values(
			result.ID,
			result.Bucket,
			result.Key,
			result.Category,
			result.Stage,
			result.FailedAt,
			result.Flagged,
			result.DestinationKey,
			result.ReportKey,
			result.Error,
			result.CreatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("ModerationResultRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ModerationResultRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *ModerationResultRepo) ListByKey(ctx context.Context, key string, limit int) ([]*entity.ModerationResult, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			bucketColumn,
			keyColumn,
			categoryColumn,
			stageColumn,
			failedAtColumn,
			flaggedColumn,
			destinationKeyColumn,
			reportKeyColumn,
			errorColumn,
			createdAtColumn,
		).
		From(resultsTable).
		Where(keyColumn+" = ?", key).
		OrderBy(createdAtColumn + " DESC").
		Limit(uint64(limit)). //nolint:gosec // validated by caller
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ModerationResultRepo - ListByKey - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ModerationResultRepo - ListByKey - executor.Query: %w", err)
	}
	defer rows.Close()

	results := make([]*entity.ModerationResult, 0, limit)
	for rows.Next() {
		var res entity.ModerationResult
		err = rows.Scan(
			&res.ID,
			&res.Bucket,
			&res.Key,
			&res.Category,
			&res.Stage,
			&res.FailedAt,
			&res.Flagged,
			&res.DestinationKey,
			&res.ReportKey,
			&res.Error,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ModerationResultRepo - ListByKey - rows.Scan: %w", err)
		}
		results = append(results, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ModerationResultRepo - ListByKey - rows.Err: %w", err)
	}

	return results, nil
}
