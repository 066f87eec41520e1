package outbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/File-Moderator/internal/metrics"
	"github.com/andreyxaxa/File-Moderator/internal/usecase"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
)

// OutboxRelay publishes journaled moderation results to the broker.
type OutboxRelay struct {
	jrn    usecase.JournalUseCase
	es     infrastructure.EventsSender
	logger logger.Interface

	pollInterval        time.Duration
	cleanupInterval     time.Duration
	markFailedInterval  time.Duration
	processBatchTimeout time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	jrn usecase.JournalUseCase,
	es infrastructure.EventsSender,
	l logger.Interface,
	pollInterval time.Duration,
	cleanupInterval time.Duration,
	markFailedInterval time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
	maxRetries int,
) *OutboxRelay {
	return &OutboxRelay{
		jrn:                 jrn,
		es:                  es,
		logger:              l,
		pollInterval:        pollInterval,
		cleanupInterval:     cleanupInterval,
		markFailedInterval:  markFailedInterval,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
		maxRetries:          maxRetries,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - relay already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// publish pending results
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.processEventsBatch(batchCtx)
		batchCancel()
	})

	// give up on events that ran out of retries
	r.worker(r.markFailedInterval, func() {
		err := r.jrn.MarkMaxRetriesAsFailed(r.ctx, r.maxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.jrn.MarkMaxRetriesAsFailed")
		}
	})

	// drop old processed and failed events
	r.worker(r.cleanupInterval, func() {
		err := r.jrn.CleanupOutbox(r.ctx)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.jrn.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) processEventsBatch(ctx context.Context) {
	events, err := r.jrn.GetPendingEvents(ctx, r.maxRetries, r.batchSize)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.jrn.GetPendingEvents")

		return
	}
	if len(events) == 0 {
		return
	}

	err = r.jrn.MarkAsProcessingBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.jrn.MarkAsProcessingBatch")

		return
	}

	err = r.es.SendEvents(ctx, events)
	metrics.ObserveOutboxBatch(len(events), err)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents - journal entries %s", journalEntries(events))
		// back to pending with one retry spent
		incErr := r.jrn.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.jrn.IncrementRetryCountBatch")
		}
		if exhausted := lastAttempts(events, r.maxRetries); len(exhausted) > 0 {
			r.logger.Warn("results of journal entries %s will not be published, delivery retries exhausted", journalEntries(exhausted))
		}
		return
	}

	err = r.jrn.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.jrn.MarkAsProcessedBatch")

		return
	}

	r.logger.Debug("published %d moderation results: %s", len(events), journalEntries(events))
}

// journalEntries lists the journal entry ids the events publish.
func journalEntries(events []*entity.OutboxEvent) string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.AggregateID.String())
	}

	return strings.Join(ids, ",")
}

// lastAttempts returns the events whose failed send used up their last retry.
func lastAttempts(events []*entity.OutboxEvent, maxRetries int) []*entity.OutboxEvent {
	var out []*entity.OutboxEvent
	for _, e := range events {
		if e.RetryCount+1 >= maxRetries {
			out = append(out, e)
		}
	}

	return out
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		r.es.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
