package moderation

import (
	"context"
	"testing"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDetectorReadsJPEGFromBucket(t *testing.T) {
	objects := newFakeObjects()
	analyzer := &fakeImageAnalyzer{labels: []dto.ModerationLabel{
		{Name: "Violence", Confidence: 95},
		{Name: "Weird", Confidence: 140},
	}}
	normalizer := &fakeNormalizer{}

	ref := entity.NewObjectReference("uploads", "pics/a.JPG", "image/jpeg")
	labels, err := NewImageDetector(analyzer, normalizer, objects).Detect(context.Background(), ref, 80)
	require.NoError(t, err)

	assert.Equal(t, []entity.DetectionLabel{
		{Name: "Violence", Confidence: 95},
		{Name: "Weird", Confidence: 100},
	}, labels)
	assert.Equal(t, dto.ImageInput{Bucket: "uploads", Key: "pics/a.JPG"}, analyzer.last)
	assert.Zero(t, normalizer.calls)
	assert.Empty(t, objects.calls)
}

func TestImageDetectorNormalizesOtherFormats(t *testing.T) {
	objects := newFakeObjects()
	objects.add("pics/a.gif", "image/gif", "GIF89a")
	analyzer := &fakeImageAnalyzer{}
	normalizer := &fakeNormalizer{out: []byte("png")}

	ref := entity.NewObjectReference("uploads", "pics/a.gif", "image/gif")
	labels, err := NewImageDetector(analyzer, normalizer, objects).Detect(context.Background(), ref, 80)
	require.NoError(t, err)

	assert.Empty(t, labels)
	assert.Equal(t, 1, normalizer.calls)
	assert.Equal(t, []byte("png"), analyzer.last.Bytes)
	assert.Equal(t, []string{"download"}, objects.calls)
}

func TestImageDetectorFailures(t *testing.T) {
	ref := entity.NewObjectReference("uploads", "pics/a.webp", "image/webp")

	t.Run("download", func(t *testing.T) {
		analyzer := &fakeImageAnalyzer{}
		_, err := NewImageDetector(analyzer, &fakeNormalizer{}, newFakeObjects()).Detect(context.Background(), ref, 80)

		assert.ErrorIs(t, err, errs.ErrContentFetch)
		assert.ErrorIs(t, err, errs.ErrRecordNotFound)
		assert.Zero(t, analyzer.calls)
	})

	t.Run("decode", func(t *testing.T) {
		objects := newFakeObjects()
		objects.add(ref.Key, ref.ContentType, "garbage")
		analyzer := &fakeImageAnalyzer{}

		_, err := NewImageDetector(analyzer, &fakeNormalizer{err: errs.ErrUnsupportedImage}, objects).Detect(context.Background(), ref, 80)

		assert.ErrorIs(t, err, errs.ErrDetectionService)
		assert.ErrorIs(t, err, errs.ErrUnsupportedImage)
		assert.Zero(t, analyzer.calls)
	})

	t.Run("analyzer", func(t *testing.T) {
		png := entity.NewObjectReference("uploads", "a.png", "image/png")
		_, err := NewImageDetector(&fakeImageAnalyzer{err: errBoom}, &fakeNormalizer{}, newFakeObjects()).Detect(context.Background(), png, 80)

		assert.ErrorIs(t, err, errs.ErrDetectionService)
		assert.ErrorIs(t, err, errBoom)
	})
}
