package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/google/uuid"
)

type (
	// ObjectRepo is bound to the moderated bucket.
	ObjectRepo interface {
		Head(ctx context.Context, key string) (entity.ObjectMeta, error)
		// Fetch reads at most limit leading bytes of the object.
		Fetch(ctx context.Context, key string, limit int64) ([]byte, error)
		// Download reads the whole object and fails when it exceeds limit bytes.
		Download(ctx context.Context, key string, limit int64) ([]byte, error)
		PutTag(ctx context.Context, key, tagKey, tagValue string) error
		Copy(ctx context.Context, srcKey, dstKey string) error
		Put(ctx context.Context, key string, body []byte, contentType string) error
	}

	ModerationResultRepo interface {
		Create(ctx context.Context, result *entity.ModerationResult) error
		ListByKey(ctx context.Context, key string, limit int) ([]*entity.ModerationResult, error)
	}

	OutboxModerationRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Time) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
