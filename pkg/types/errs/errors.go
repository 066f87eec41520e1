package errs

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrObjectTooLarge   = errors.New("object too large")
	ErrUnsupportedImage = errors.New("unsupported image")

	// Error kinds of the moderation pipeline.
	ErrConfiguration    = errors.New("configuration error")
	ErrMetadataFetch    = errors.New("metadata fetch error")
	ErrContentFetch     = errors.New("content fetch error")
	ErrDetectionService = errors.New("detection service error")
	ErrRouting          = errors.New("routing error")
	ErrReportWrite      = errors.New("report write error")
)

// Retryable reports whether err was raised before the pipeline touched storage,
// so running the object again cannot repeat a side effect.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, ErrObjectTooLarge) || errors.Is(err, ErrUnsupportedImage) || errors.Is(err, ErrRecordNotFound) {
		return false
	}

	return errors.Is(err, ErrMetadataFetch) ||
		errors.Is(err, ErrContentFetch) ||
		errors.Is(err, ErrDetectionService)
}

// Kind returns a short label of the pipeline error kind carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrMetadataFetch):
		return "metadata_fetch"
	case errors.Is(err, ErrContentFetch):
		return "content_fetch"
	case errors.Is(err, ErrDetectionService):
		return "detection_service"
	case errors.Is(err, ErrRouting):
		return "routing"
	case errors.Is(err, ErrReportWrite):
		return "report_write"
	default:
		return "internal"
	}
}
