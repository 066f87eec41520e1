package moderation

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/File-Moderator/internal/repo"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
)

const (
	// MaxImageDownloadBytes caps images that have to be re-encoded locally.
	MaxImageDownloadBytes = 15 << 20
	// MaxInlineImageBytes is the largest payload the analyzer accepts inline.
	MaxInlineImageBytes = 5 << 20
)

// Formats the analyzer reads straight from the bucket.
var (
	directExtensions = map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
	}

	directContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/jpg":  {},
		"image/png":  {},
	}
)

type ImageDetector struct {
	analyzer   infrastructure.ImageAnalyzer
	normalizer infrastructure.ImageNormalizer
	objects    repo.ObjectRepo
}

func NewImageDetector(
	analyzer infrastructure.ImageAnalyzer,
	normalizer infrastructure.ImageNormalizer,
	objects repo.ObjectRepo,
) *ImageDetector {
	return &ImageDetector{
		analyzer:   analyzer,
		normalizer: normalizer,
		objects:    objects,
	}
}

func (d *ImageDetector) Detect(ctx context.Context, ref entity.ObjectReference, minConfidence float64) ([]entity.DetectionLabel, error) {
	input := dto.ImageInput{Bucket: ref.Bucket, Key: ref.Key}

	if !readsDirectly(ref) {
		data, err := d.objects.Download(ctx, ref.Key, MaxImageDownloadBytes)
		if err != nil {
			return nil, fmt.Errorf("ImageDetector - Detect - d.objects.Download: %w: %w", errs.ErrContentFetch, err)
		}

		input.Bytes, err = d.normalizer.Normalize(ctx, data, MaxInlineImageBytes)
		if err != nil {
			return nil, fmt.Errorf("ImageDetector - Detect - d.normalizer.Normalize: %w: %w", errs.ErrDetectionService, err)
		}
	}

	raw, err := d.analyzer.DetectModerationLabels(ctx, input, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("ImageDetector - Detect - d.analyzer.DetectModerationLabels: %w: %w", errs.ErrDetectionService, err)
	}

	labels := make([]entity.DetectionLabel, 0, len(raw))
	for _, l := range raw {
		labels = append(labels, entity.DetectionLabel{
			Name:       l.Name,
			Confidence: clamp(l.Confidence, 0, 100),
		})
	}

	return labels, nil
}

func readsDirectly(ref entity.ObjectReference) bool {
	if _, ok := directExtensions[ref.Extension]; ok {
		return true
	}

	_, ok := directContentTypes[ref.ContentType]

	return ok
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
