package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/File-Moderator/internal/metrics"
	"github.com/andreyxaxa/File-Moderator/internal/usecase"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

const _defaultRetryBase = 200 * time.Millisecond

type KafkaController struct {
	mod    usecase.ModerationUseCase
	jrn    usecase.JournalUseCase
	er     infrastructure.EventsReader
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	retryBase      time.Duration
	maxRetries     uint64
	parallelism    int

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	mod usecase.ModerationUseCase,
	jrn usecase.JournalUseCase,
	er infrastructure.EventsReader,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	retryBase time.Duration,
	maxRetries int,
	parallelism int,
	workers int,
) *KafkaController {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryBase <= 0 {
		retryBase = _defaultRetryBase
	}

	return &KafkaController{
		mod:            mod,
		jrn:            jrn,
		er:             er,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		retryBase:      retryBase,
		maxRetries:     uint64(maxRetries),
		parallelism:    parallelism,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				event, err := c.er.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.er.ReadEvent")
					}
					continue
				}

				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// handleEvent moderates every eligible record of one notification. Records
// are independent: a failed one is logged and journaled, its siblings go on.
func (c *KafkaController) handleEvent(ctx context.Context, event kafka.Message) error {
	var notification S3EventNotification
	err := json.Unmarshal(event.Value, &notification)
	if err != nil {
		return fmt.Errorf("KafkaController - handleEvent - json.Unmarshal: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.parallelism > 0 {
		g.SetLimit(c.parallelism)
	}

	for _, record := range notification.Records {
		key, ok := c.eligibleKey(record)
		if !ok {
			continue
		}

		g.Go(func() error {
			c.moderate(gctx, key)

			return nil
		})
	}

	return g.Wait()
}

func (c *KafkaController) eligibleKey(record S3EventRecord) (string, bool) {
	if !record.ObjectCreated() {
		return "", false
	}

	if record.S3.Bucket.Name != c.mod.Bucket() {
		c.logger.Debug("skipping record of bucket %s", record.S3.Bucket.Name)

		return "", false
	}

	key, err := record.ObjectKey()
	if err != nil {
		c.logger.Error(err, "KafkaController - eligibleKey - key=%s", record.S3.Object.Key)

		return "", false
	}

	// our own copies and reports trigger notifications as well
	if key == "" || c.mod.IsOutputKey(key) {
		return "", false
	}

	return key, true
}

func (c *KafkaController) moderate(ctx context.Context, key string) {
	var outcome *dto.Outcome

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		outcome, err = c.mod.Moderate(ctx, key)
		if errs.Retryable(err) {
			metrics.ObserveRetry()
			c.logger.Warn("moderation of %s failed before any side effect, will retry: %v", key, err)

			return retry.RetryableError(err)
		}

		return err
	})
	if err != nil {
		c.logger.Error(err, "KafkaController - moderate - key=%s", key)
	}

	if outcome == nil {
		return
	}

	// the journal entry is written even when the pipeline was canceled
	journalCtx, journalCancel := context.WithTimeout(context.WithoutCancel(ctx), c.commitTimeout)
	defer journalCancel()

	_, jerr := c.jrn.Record(journalCtx, outcome, err)
	if jerr != nil {
		c.logger.Error(jerr, "KafkaController - moderate - c.jrn.Record")
	}
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			err := c.handleEvent(processCtx, event)
			processCancel()
			if err != nil {
				// a malformed notification will never parse, commit it anyway
				c.logger.Error(err, "KafkaController - worker - c.handleEvent")
			}

			// shutdown interrupted the records, leave the message for redelivery
			if c.ctx.Err() != nil {
				return
			}

			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.er.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.er.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.er.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
