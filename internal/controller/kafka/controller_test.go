package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModeration struct {
	mu       sync.Mutex
	attempts map[string]int
	failures map[string][]error
}

func newFakeModeration() *fakeModeration {
	return &fakeModeration{attempts: map[string]int{}, failures: map[string][]error{}}
}

func (f *fakeModeration) Moderate(_ context.Context, key string) (*dto.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.attempts[key]
	f.attempts[key]++

	o := dto.NewOutcome("uploads", key)
	if n < len(f.failures[key]) {
		o.Fail(entity.StageDetected)
		return o, f.failures[key][n]
	}

	o.Advance(entity.StageDone)

	return o, nil
}

func (f *fakeModeration) LoadReport(context.Context, string) (*entity.ModerationRecord, entity.Verdict, error) {
	return nil, entity.Verdict{}, nil
}

func (f *fakeModeration) IsOutputKey(key string) bool {
	return strings.HasPrefix(key, "approved/") || strings.HasPrefix(key, "moderation-reports/")
}

func (f *fakeModeration) Bucket() string {
	return "uploads"
}

func (f *fakeModeration) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.attempts))
	for k := range f.attempts {
		keys = append(keys, k)
	}

	return keys
}

type fakeJournal struct {
	mu       sync.Mutex
	recorded map[string]error
}

func (f *fakeJournal) Record(_ context.Context, o *dto.Outcome, runErr error) (*entity.ModerationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recorded[o.Key] = runErr

	return &entity.ModerationResult{Key: o.Key}, nil
}

func (f *fakeJournal) ListByKey(context.Context, string, int) ([]*entity.ModerationResult, error) {
	return nil, nil
}

func (f *fakeJournal) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeJournal) MarkAsProcessingBatch(context.Context, []*entity.OutboxEvent) error { return nil }

func (f *fakeJournal) MarkAsProcessedBatch(context.Context, []*entity.OutboxEvent) error { return nil }

func (f *fakeJournal) IncrementRetryCountBatch(context.Context, []*entity.OutboxEvent) error {
	return nil
}

func (f *fakeJournal) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }

func (f *fakeJournal) CleanupOutbox(context.Context) error { return nil }

func newTestController(mod *fakeModeration, jrn *fakeJournal) *KafkaController {
	return New(mod, jrn, nil, logger.NewNop(), time.Second, time.Second, time.Millisecond, 2, 4, 1)
}

func notification(records ...string) kafka.Message {
	return kafka.Message{Value: []byte(`{"Records":[` + strings.Join(records, ",") + `]}`)}
}

func record(event, bucket, key string) string {
	return fmt.Sprintf(`{"eventName":%q,"s3":{"bucket":{"name":%q},"object":{"key":%q,"size":10}}}`, event, bucket, key)
}

func TestHandleEventFiltersRecords(t *testing.T) {
	mod, jrn := newFakeModeration(), &fakeJournal{recorded: map[string]error{}}
	c := newTestController(mod, jrn)

	err := c.handleEvent(context.Background(), notification(
		record("ObjectCreated:Put", "uploads", "docs/my+report.txt"),
		record("s3:ObjectCreated:CompleteMultipartUpload", "uploads", "pics/a%281%29.png"),
		record("ObjectCreated:Copy", "uploads", "approved/docs/old.txt"),
		record("ObjectCreated:Put", "uploads", "moderation-reports/docs/old.txt.json"),
		record("ObjectCreated:Put", "other", "docs/b.txt"),
		record("ObjectRemoved:Delete", "uploads", "docs/c.txt"),
	))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"docs/my report.txt", "pics/a(1).png"}, mod.keys())
	assert.Len(t, jrn.recorded, 2)
}

func TestHandleEventRetriesFailuresBeforeSideEffects(t *testing.T) {
	mod, jrn := newFakeModeration(), &fakeJournal{recorded: map[string]error{}}
	detection := fmt.Errorf("%w: %w", errs.ErrDetectionService, errors.New("throttled"))
	mod.failures["a.txt"] = []error{detection, detection}
	c := newTestController(mod, jrn)

	require.NoError(t, c.handleEvent(context.Background(), notification(record("ObjectCreated:Put", "uploads", "a.txt"))))

	assert.Equal(t, 3, mod.attempts["a.txt"])
	assert.NoError(t, jrn.recorded["a.txt"])
}

func TestHandleEventGivesUpAfterMaxRetries(t *testing.T) {
	mod, jrn := newFakeModeration(), &fakeJournal{recorded: map[string]error{}}
	detection := fmt.Errorf("%w: %w", errs.ErrDetectionService, errors.New("down"))
	mod.failures["a.txt"] = []error{detection, detection, detection, detection}
	c := newTestController(mod, jrn)

	require.NoError(t, c.handleEvent(context.Background(), notification(record("ObjectCreated:Put", "uploads", "a.txt"))))

	assert.Equal(t, 3, mod.attempts["a.txt"])
	assert.ErrorIs(t, jrn.recorded["a.txt"], errs.ErrDetectionService)
}

func TestHandleEventDoesNotRetrySideEffectFailures(t *testing.T) {
	mod, jrn := newFakeModeration(), &fakeJournal{recorded: map[string]error{}}
	mod.failures["a.txt"] = []error{fmt.Errorf("%w: %w", errs.ErrRouting, errors.New("copy"))}
	mod.failures["b.txt"] = nil
	c := newTestController(mod, jrn)

	require.NoError(t, c.handleEvent(context.Background(), notification(
		record("ObjectCreated:Put", "uploads", "a.txt"),
		record("ObjectCreated:Put", "uploads", "b.txt"),
	)))

	assert.Equal(t, 1, mod.attempts["a.txt"])
	assert.ErrorIs(t, jrn.recorded["a.txt"], errs.ErrRouting)
	assert.Equal(t, 1, mod.attempts["b.txt"])
	assert.NoError(t, jrn.recorded["b.txt"])
}

func TestHandleEventMalformed(t *testing.T) {
	c := newTestController(newFakeModeration(), &fakeJournal{recorded: map[string]error{}})

	err := c.handleEvent(context.Background(), kafka.Message{Value: []byte("not json")})

	assert.Error(t, err)
}
