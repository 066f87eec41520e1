package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/File-Moderator/internal/metrics"
	"github.com/andreyxaxa/File-Moderator/internal/repo"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UnsupportedNote is stored on records of objects no detector can handle.
const UnsupportedNote = "Skipped moderation (unsupported type)"

const tracerName = "github.com/andreyxaxa/File-Moderator/internal/usecase/moderation"

type Settings struct {
	Bucket           string
	ApprovedPrefix   string
	QuarantinePrefix string
	ReportsPrefix    string
	Thresholds       entity.ThresholdConfig
}

// UseCase moderates one object at a time. It holds no per-object state, so a
// single value serves concurrent calls.
type UseCase struct {
	settings Settings

	objects repo.ObjectRepo
	images  *ImageDetector
	texts   *TextDetector
	router  *Router
	reports *ReportWriter

	tracer trace.Tracer
	logger logger.Interface
}

func New(
	s Settings,
	objects repo.ObjectRepo,
	imageAnalyzer infrastructure.ImageAnalyzer,
	normalizer infrastructure.ImageNormalizer,
	textAnalyzer infrastructure.TextAnalyzer,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		settings: s,
		objects:  objects,
		images:   NewImageDetector(imageAnalyzer, normalizer, objects),
		texts:    NewTextDetector(textAnalyzer),
		router:   NewRouter(objects, s.ApprovedPrefix, s.QuarantinePrefix),
		reports:  NewReportWriter(objects, s.ReportsPrefix),
		tracer:   otel.Tracer(tracerName),
		logger:   l,
	}
}

func (uc *UseCase) Bucket() string {
	return uc.settings.Bucket
}

func (uc *UseCase) IsOutputKey(key string) bool {
	for _, prefix := range []string{uc.settings.ApprovedPrefix, uc.settings.QuarantinePrefix, uc.settings.ReportsPrefix} {
		if prefix != "" && strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

func (uc *UseCase) Moderate(ctx context.Context, key string) (*dto.Outcome, error) {
	start := time.Now()
	outcome := dto.NewOutcome(uc.settings.Bucket, key)

	ctx, span := uc.tracer.Start(ctx, "moderation.Moderate", trace.WithAttributes(
		attribute.String("moderation.bucket", uc.settings.Bucket),
		attribute.String("moderation.key", key),
	))
	defer span.End()

	uc.logger.Debug("moderating s3://%s/%s", uc.settings.Bucket, key)

	err := uc.run(ctx, outcome)
	metrics.ObserveOutcome(outcome, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(outcome.FailedAt))
		uc.logger.Error(err, "moderation - UseCase - Moderate - key=%s failed_at=%s", key, outcome.FailedAt)

		return outcome, fmt.Errorf("UseCase - Moderate - key=%s: %w", key, err)
	}

	span.SetAttributes(
		attribute.String("moderation.category", string(outcome.Category)),
		attribute.String("moderation.verdict", outcome.Verdict.Status()),
	)
	uc.logger.Info("moderated s3://%s/%s: %s | %s | %s",
		uc.settings.Bucket, key, outcome.Verdict.Status(), outcome.DestinationKey, outcome.ReportKey)

	return outcome, nil
}

// run advances the state machine. On failure FailedAt names the stage that
// was being entered and nothing further is attempted.
func (uc *UseCase) run(ctx context.Context, o *dto.Outcome) error {
	// Classified
	if err := ctx.Err(); err != nil {
		o.Fail(entity.StageClassified)
		return fmt.Errorf("UseCase - run: %w", err)
	}

	meta, err := uc.objects.Head(ctx, o.Key)
	if err != nil {
		o.Fail(entity.StageClassified)
		return fmt.Errorf("UseCase - run - uc.objects.Head: %w: %w", errs.ErrMetadataFetch, err)
	}

	o.Object = entity.NewObjectReference(uc.settings.Bucket, o.Key, meta.ContentType)
	o.Category = Classify(o.Object.ContentType, o.Object.Extension)
	o.Advance(entity.StageClassified)

	// Detected
	record, err := uc.detect(ctx, o.Object, o.Category)
	if err != nil {
		o.Fail(entity.StageDetected)
		return err
	}

	o.Record = record
	o.Advance(entity.StageDetected)

	// Verdicted
	o.Verdict = Evaluate(o.Category, record, uc.settings.Thresholds)
	o.Advance(entity.StageVerdicted)

	// Routed
	routeCtx, routeSpan := uc.tracer.Start(ctx, "moderation.route")
	o.DestinationKey, err = uc.router.Route(routeCtx, o.Object, o.Verdict)
	endSpan(routeSpan, err)
	if err != nil {
		o.Fail(entity.StageRouted)
		return fmt.Errorf("UseCase - run - uc.router.Route: %w", err)
	}

	o.Advance(entity.StageRouted)

	// Reported
	reportCtx, reportSpan := uc.tracer.Start(ctx, "moderation.report")
	o.ReportKey, err = uc.reports.Write(reportCtx, record)
	endSpan(reportSpan, err)
	if err != nil {
		o.Fail(entity.StageReported)
		return fmt.Errorf("UseCase - run - uc.reports.Write: %w", err)
	}

	o.Advance(entity.StageReported)
	o.Advance(entity.StageDone)

	return nil
}

func (uc *UseCase) detect(ctx context.Context, ref entity.ObjectReference, category entity.Category) (*entity.ModerationRecord, error) {
	ctx, span := uc.tracer.Start(ctx, "moderation.detect", trace.WithAttributes(
		attribute.String("moderation.category", string(category)),
	))

	record := &entity.ModerationRecord{
		Bucket:      ref.Bucket,
		Key:         ref.Key,
		ContentType: ref.ContentType,
	}

	var err error

	switch category {
	case entity.CategoryImage:
		record.ImageLabels, err = uc.images.Detect(ctx, ref, uc.settings.Thresholds.MinImageConfidence)
		if err != nil {
			err = fmt.Errorf("UseCase - detect - uc.images.Detect: %w", err)
		}
	case entity.CategoryText:
		err = uc.detectText(ctx, ref, record)
	default:
		note := UnsupportedNote
		record.Note = &note
	}

	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (uc *UseCase) detectText(ctx context.Context, ref entity.ObjectReference, record *entity.ModerationRecord) error {
	body, err := uc.objects.Fetch(ctx, ref.Key, MaxTextBytes)
	if err != nil {
		return fmt.Errorf("UseCase - detectText - uc.objects.Fetch: %w: %w", errs.ErrContentFetch, err)
	}

	analysis, err := uc.texts.Detect(ctx, string(body))
	if err != nil {
		return fmt.Errorf("UseCase - detectText - uc.texts.Detect: %w", err)
	}

	record.SetTextAnalysis(analysis)

	return nil
}

// LoadReport reads a stored report and recomputes its verdict with the active thresholds.
func (uc *UseCase) LoadReport(ctx context.Context, key string) (*entity.ModerationRecord, entity.Verdict, error) {
	record, err := uc.reports.Load(ctx, key)
	if err != nil {
		return nil, entity.Verdict{}, fmt.Errorf("UseCase - LoadReport - uc.reports.Load: %w", err)
	}

	return record, Evaluate(CategoryOf(record), record, uc.settings.Thresholds), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errs.Kind(err))
	}
	span.End()
}
