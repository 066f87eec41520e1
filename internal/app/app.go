package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/File-Moderator/config"
	kafkactrl "github.com/andreyxaxa/File-Moderator/internal/controller/kafka"
	"github.com/andreyxaxa/File-Moderator/internal/controller/restapi"
	"github.com/andreyxaxa/File-Moderator/internal/controller/worker/outbox"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure/comprehend"
	infrakafka "github.com/andreyxaxa/File-Moderator/internal/infrastructure/kafka"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure/processor"
	"github.com/andreyxaxa/File-Moderator/internal/infrastructure/rekognition"
	"github.com/andreyxaxa/File-Moderator/internal/repo/persistent"
	"github.com/andreyxaxa/File-Moderator/internal/usecase/journal"
	"github.com/andreyxaxa/File-Moderator/internal/usecase/moderation"
	"github.com/andreyxaxa/File-Moderator/pkg/awsclient"
	"github.com/andreyxaxa/File-Moderator/pkg/httpserver"
	"github.com/andreyxaxa/File-Moderator/pkg/kafka/consumer"
	"github.com/andreyxaxa/File-Moderator/pkg/kafka/producer"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/andreyxaxa/File-Moderator/pkg/postgres"
	"github.com/andreyxaxa/File-Moderator/pkg/tracing"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)
	defer l.Sync() //nolint:errcheck // stderr sync fails on some terminals

	// Tracing
	tp, err := tracing.New(ctx, cfg.App.Name, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - tracing.New: %w", err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			l.Error(fmt.Errorf("app - Run - tp.Shutdown: %w", err))
		}
	}()

	// Repository

	// aws: bucket store, image and text analysis
	awsOpts := []awsclient.Option{
		awsclient.Region(cfg.AWS.Region),
		awsclient.UsePathStyle(cfg.S3.UsePathStyle),
	}
	if cfg.AWS.AccessKey != "" {
		awsOpts = append(awsOpts, awsclient.StaticCredentials(cfg.AWS.AccessKey, cfg.AWS.SecretKey))
	}
	if cfg.S3.Endpoint != "" {
		awsOpts = append(awsOpts, awsclient.S3Endpoint(cfg.S3.Endpoint))
	}

	awsCtx, awsCancel := context.WithTimeout(ctx, cfg.AWS.CfgLoadTimeout)
	defer awsCancel()
	awsc, err := awsclient.New(awsCtx, cfg.Moderation.Bucket, awsOpts...)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - awsclient.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// Use-Case

	// moderation pipeline
	moderationUseCase := moderation.New(
		moderation.Settings{
			Bucket:           cfg.Moderation.Bucket,
			ApprovedPrefix:   cfg.Moderation.ApprovedPrefix,
			QuarantinePrefix: cfg.Moderation.QuarantinePrefix,
			ReportsPrefix:    cfg.Moderation.ReportsPrefix,
			Thresholds:       cfg.Moderation.Thresholds(),
		},
		persistent.NewObjectRepo(awsc, cfg.Moderation.Bucket),
		rekognition.New(awsc.Rekognition),
		processor.New(),
		comprehend.New(awsc.Comprehend),
		l,
	)

	// moderation journal
	journalUseCase := journal.New(
		persistent.NewModerationResultRepo(pg),
		persistent.NewOutboxModerationRepo(pg),
		pg,
		cfg.OutboxRelay.Retention,
		l,
	)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers,
		producer.BatchTimeout(cfg.Kafka.ProducerBatchTimeout),
		producer.WriteTimeout(cfg.Kafka.ProducerWriteTimeout),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		journalUseCase,
		infrakafka.NewResultProducer(kafkaProducer, cfg.Kafka.ResultsTopic),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	workers := cfg.KafkaController.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		moderationUseCase,
		journalUseCase,
		infrakafka.NewNotificationConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.RetryBase,
		cfg.Moderation.MaxRetries,
		cfg.Moderation.BatchParallelism,
		workers,
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.AppName(cfg.App.Name),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
	)
	restapi.NewRouter(httpServer.App, cfg, moderationUseCase, journalUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	l.Info("app - Run - moderating bucket %s", cfg.Moderation.Bucket)

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}
}
