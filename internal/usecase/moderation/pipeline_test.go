package moderation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	objects  *fakeObjects
	images   *fakeImageAnalyzer
	norm     *fakeNormalizer
	texts    *fakeTextAnalyzer
	pipeline *UseCase
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		objects: newFakeObjects(),
		images:  &fakeImageAnalyzer{},
		norm:    &fakeNormalizer{out: []byte("png")},
		texts:   &fakeTextAnalyzer{languages: []dto.DetectedLanguage{{Code: "en", Score: 0.99}}},
	}

	f.pipeline = New(Settings{
		Bucket:           "uploads",
		ApprovedPrefix:   "approved/",
		QuarantinePrefix: "quarantine/",
		ReportsPrefix:    "moderation-reports/",
		Thresholds:       defaultThresholds,
	}, f.objects, f.images, f.norm, f.texts, logger.NewNop())

	return f
}

func (f *pipelineFixture) report(t *testing.T, key string) *entity.ModerationRecord {
	t.Helper()

	body, ok := f.objects.puts["moderation-reports/"+key+".json"]
	require.True(t, ok, "report for %s not written", key)

	var record entity.ModerationRecord
	require.NoError(t, json.Unmarshal(body, &record))

	return &record
}

func TestModerateImageRejected(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("pics/cat.jpg", "image/jpeg", "jpeg")
	f.images.labels = []dto.ModerationLabel{{Name: "Violence", Confidence: 95}}

	outcome, err := f.pipeline.Moderate(context.Background(), "pics/cat.jpg")
	require.NoError(t, err)

	assert.Equal(t, entity.StageDone, outcome.Stage)
	assert.Equal(t, entity.CategoryImage, outcome.Category)
	assert.True(t, outcome.Verdict.Flagged)
	assert.Equal(t, "quarantine/pics/cat.jpg", outcome.DestinationKey)
	assert.Equal(t, "moderation-reports/pics/cat.jpg.json", outcome.ReportKey)
	assert.Equal(t, "moderation=rejected", f.objects.tags["pics/cat.jpg"])
	assert.Equal(t, "pics/cat.jpg", f.objects.copies["quarantine/pics/cat.jpg"])

	record := f.report(t, "pics/cat.jpg")
	assert.Equal(t, []entity.DetectionLabel{{Name: "Violence", Confidence: 95}}, record.ImageLabels)
	assert.Equal(t, "image/jpeg", record.ContentType)
	assert.Equal(t, "uploads", record.Bucket)
}

func TestModerateImageApproved(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("pics/dog.png", "image/png", "png")
	f.images.labels = []dto.ModerationLabel{{Name: "Suggestive", Confidence: 60}, {Name: "Alcohol", Confidence: 79.99}}

	outcome, err := f.pipeline.Moderate(context.Background(), "pics/dog.png")
	require.NoError(t, err)

	assert.False(t, outcome.Verdict.Flagged)
	assert.Equal(t, "approved/pics/dog.png", outcome.DestinationKey)
	assert.Equal(t, "moderation=approved", f.objects.tags["pics/dog.png"])
}

func TestModerateTextNegativeSentimentApproved(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("notes/rant.txt", "text/plain", "I hate everything about this")
	f.texts.pii = []dto.PiiEntity{{Type: "NAME", Score: ptr(0.5)}}
	f.texts.sentiment = dto.Sentiment{Label: "NEGATIVE", Negative: 0.98}

	outcome, err := f.pipeline.Moderate(context.Background(), "notes/rant.txt")
	require.NoError(t, err)

	assert.False(t, outcome.Verdict.Flagged)
	assert.Equal(t, "approved/notes/rant.txt", outcome.DestinationKey)

	record := f.report(t, "notes/rant.txt")
	require.NotNil(t, record.Sentiment)
	assert.Equal(t, "NEGATIVE", *record.Sentiment)
	assert.Equal(t, "en", *record.Language)
	assert.Nil(t, record.ImageLabels)
	assert.Nil(t, record.Note)
}

func TestModerateTextWithPiiRejected(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("forms/a.csv", "application/octet-stream", "name,ssn\nbob,123-45-6789")
	f.texts.pii = []dto.PiiEntity{{Type: "SSN", Score: ptr(0.95)}}
	f.texts.sentiment = dto.Sentiment{Label: "POSITIVE", Positive: 0.99}

	outcome, err := f.pipeline.Moderate(context.Background(), "forms/a.csv")
	require.NoError(t, err)

	assert.Equal(t, entity.CategoryText, outcome.Category)
	assert.True(t, outcome.Verdict.Flagged)
	assert.Equal(t, "quarantine/forms/a.csv", outcome.DestinationKey)
	assert.Equal(t, "moderation=rejected", f.objects.tags["forms/a.csv"])
	assert.Equal(t, "name,ssn\nbob,123-45-6789", f.texts.lastText)
}

func TestModerateUnsupportedSkipsDetectors(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("archives/a.zip", "application/zip", "PK")

	outcome, err := f.pipeline.Moderate(context.Background(), "archives/a.zip")
	require.NoError(t, err)

	assert.Equal(t, entity.StageDone, outcome.Stage)
	assert.Equal(t, entity.CategoryUnsupported, outcome.Category)
	assert.False(t, outcome.Verdict.Flagged)
	assert.Equal(t, "approved/archives/a.zip", outcome.DestinationKey)
	assert.Zero(t, f.images.calls)
	assert.Empty(t, f.texts.calls)
	assert.NotContains(t, f.objects.calls, "fetch")

	record := f.report(t, "archives/a.zip")
	require.NotNil(t, record.Note)
	assert.Equal(t, UnsupportedNote, *record.Note)
	assert.Nil(t, record.ImageLabels)
	assert.Nil(t, record.Pii)
	assert.Nil(t, record.Sentiment)
	assert.Nil(t, record.Language)
}

func TestModerateOverwritesReport(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("docs/report.txt", "text/plain", "hello")

	first, err := f.pipeline.Moderate(context.Background(), "docs/report.txt")
	require.NoError(t, err)
	body := f.objects.puts[first.ReportKey]

	second, err := f.pipeline.Moderate(context.Background(), "docs/report.txt")
	require.NoError(t, err)

	assert.Equal(t, "moderation-reports/docs/report.txt.json", second.ReportKey)
	assert.Equal(t, first.ReportKey, second.ReportKey)
	assert.Len(t, f.objects.puts, 1)
	assert.Equal(t, body, f.objects.puts[second.ReportKey])
}

func TestModerateFailuresBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *pipelineFixture)
		kind     error
		failedAt entity.Stage
	}{
		{
			name:     "metadata",
			setup:    func(f *pipelineFixture) { f.objects.headErr = errBoom },
			kind:     errs.ErrMetadataFetch,
			failedAt: entity.StageClassified,
		},
		{
			name: "image detection",
			setup: func(f *pipelineFixture) {
				f.objects.add("k", "image/png", "png")
				f.images.err = errBoom
			},
			kind:     errs.ErrDetectionService,
			failedAt: entity.StageDetected,
		},
		{
			name: "text content",
			setup: func(f *pipelineFixture) {
				f.objects.add("k", "text/plain", "x")
				f.objects.fetchErr = errBoom
			},
			kind:     errs.ErrContentFetch,
			failedAt: entity.StageDetected,
		},
		{
			name: "sentiment",
			setup: func(f *pipelineFixture) {
				f.objects.add("k", "text/plain", "x")
				f.texts.sentimentErr = errBoom
			},
			kind:     errs.ErrDetectionService,
			failedAt: entity.StageDetected,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newPipelineFixture()
			tc.setup(f)

			outcome, err := f.pipeline.Moderate(context.Background(), "k")

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.True(t, errs.Retryable(err))
			assert.Equal(t, entity.StageFailed, outcome.Stage)
			assert.Equal(t, tc.failedAt, outcome.FailedAt)
			assert.Zero(t, f.objects.sideEffects())
		})
	}
}

func TestModerateCopyFailureKeepsTag(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("a.txt", "text/plain", "hi")
	f.objects.copyErr = errBoom

	outcome, err := f.pipeline.Moderate(context.Background(), "a.txt")

	assert.ErrorIs(t, err, errs.ErrRouting)
	assert.False(t, errs.Retryable(err))
	assert.Equal(t, entity.StageRouted, outcome.FailedAt)
	assert.Equal(t, "moderation=approved", f.objects.tags["a.txt"])
	assert.Empty(t, f.objects.puts)
}

func TestModerateReportFailureKeepsRouting(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("a.txt", "text/plain", "hi")
	f.objects.putErr = errBoom

	outcome, err := f.pipeline.Moderate(context.Background(), "a.txt")

	assert.ErrorIs(t, err, errs.ErrReportWrite)
	assert.Equal(t, entity.StageReported, outcome.FailedAt)
	assert.Equal(t, "approved/a.txt", outcome.DestinationKey)
	assert.Equal(t, "a.txt", f.objects.copies["approved/a.txt"])
}

func TestModerateStopsSideEffectsAfterCancellation(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("a.txt", "text/plain", "hi")

	ctx, cancel := context.WithCancel(context.Background())
	f.objects.afterTag = cancel

	outcome, err := f.pipeline.Moderate(ctx, "a.txt")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "canceled", errs.Kind(err))
	assert.Equal(t, entity.StageRouted, outcome.FailedAt)
	assert.Empty(t, f.objects.copies)
	assert.Empty(t, f.objects.puts)
}

func TestModerateCanceledBeforeStart(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("a.txt", "text/plain", "hi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := f.pipeline.Moderate(ctx, "a.txt")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, entity.StageClassified, outcome.FailedAt)
	assert.Empty(t, f.objects.calls)
}

func TestIsOutputKey(t *testing.T) {
	p := newPipelineFixture().pipeline

	assert.True(t, p.IsOutputKey("approved/a.txt"))
	assert.True(t, p.IsOutputKey("quarantine/a.txt"))
	assert.True(t, p.IsOutputKey("moderation-reports/a.txt.json"))
	assert.False(t, p.IsOutputKey("uploads/approved/a.txt"))
	assert.Equal(t, "uploads", p.Bucket())
}

func TestLoadReportRecomputesVerdict(t *testing.T) {
	f := newPipelineFixture()
	f.objects.add("forms/a.txt", "text/plain", "ssn")
	f.texts.pii = []dto.PiiEntity{{Type: "SSN", Score: ptr(0.95)}}

	_, err := f.pipeline.Moderate(context.Background(), "forms/a.txt")
	require.NoError(t, err)

	record, verdict, err := f.pipeline.LoadReport(context.Background(), "forms/a.txt")
	require.NoError(t, err)
	assert.True(t, verdict.Flagged)
	assert.Equal(t, "forms/a.txt", record.Key)

	_, _, err = f.pipeline.LoadReport(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}
