package infrastructure

import (
	"context"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/segmentio/kafka-go"
)

type (
	// ImageAnalyzer filters labels below minConfidence on its side.
	ImageAnalyzer interface {
		DetectModerationLabels(ctx context.Context, img dto.ImageInput, minConfidence float64) ([]dto.ModerationLabel, error)
	}

	TextAnalyzer interface {
		DetectDominantLanguage(ctx context.Context, text string) ([]dto.DetectedLanguage, error)
		DetectPiiEntities(ctx context.Context, text, languageCode string) ([]dto.PiiEntity, error)
		DetectSentiment(ctx context.Context, text, languageCode string) (dto.Sentiment, error)
	}

	// ImageNormalizer re-encodes an image into a format the analyzer accepts
	// inline, no larger than maxBytes.
	ImageNormalizer interface {
		Normalize(ctx context.Context, data []byte, maxBytes int) ([]byte, error)
	}

	EventsReader interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, event kafka.Message) error
		Close() error
	}

	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}
)
