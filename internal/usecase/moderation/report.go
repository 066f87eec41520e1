package moderation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/repo"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
)

const (
	reportSuffix      = ".json"
	reportContentType = "application/json"
	maxReportBytes    = 10 << 20
)

type ReportWriter struct {
	objects repo.ObjectRepo
	prefix  string
}

func NewReportWriter(objects repo.ObjectRepo, prefix string) *ReportWriter {
	return &ReportWriter{objects: objects, prefix: prefix}
}

// Key is deterministic, so moderating the same object again overwrites its report.
func (w *ReportWriter) Key(key string) string {
	return w.prefix + key + reportSuffix
}

func (w *ReportWriter) Write(ctx context.Context, record *entity.ModerationRecord) (string, error) {
	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ReportWriter - Write - json.MarshalIndent: %w: %w", errs.ErrReportWrite, err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("ReportWriter - Write: %w", err)
	}

	reportKey := w.Key(record.Key)

	err = w.objects.Put(ctx, reportKey, body, reportContentType)
	if err != nil {
		return "", fmt.Errorf("ReportWriter - Write - w.objects.Put: %w: %w", errs.ErrReportWrite, err)
	}

	return reportKey, nil
}

func (w *ReportWriter) Load(ctx context.Context, key string) (*entity.ModerationRecord, error) {
	body, err := w.objects.Download(ctx, w.Key(key), maxReportBytes)
	if err != nil {
		return nil, fmt.Errorf("ReportWriter - Load - w.objects.Download: %w", err)
	}

	var record entity.ModerationRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("ReportWriter - Load - json.Unmarshal: %w", err)
	}

	return &record, nil
}
