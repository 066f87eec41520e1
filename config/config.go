package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		App             App
		Moderation      Moderation
		HTTP            HTTP
		Log             Log
		PG              PG
		S3              S3
		AWS             AWS
		OutboxRelay     OutboxRelay
		Kafka           Kafka
		KafkaController KafkaController
		Metrics         Metrics
		Tracing         Tracing
		Swagger         Swagger
	}

	App struct {
		Name    string `env:"APP_NAME" envDefault:"file-moderator"`
		Version string `env:"APP_VERSION" envDefault:"1.0.0"`
	}

	Moderation struct {
		Bucket           string  `env:"BUCKET_NAME,required,notEmpty"`
		ApprovedPrefix   string  `env:"APPROVED_PREFIX" envDefault:"approved/"`
		QuarantinePrefix string  `env:"QUARANTINE_PREFIX" envDefault:"quarantine/"`
		ReportsPrefix    string  `env:"REPORTS_PREFIX" envDefault:"moderation-reports/"`
		MinImageConf     float64 `env:"MIN_IMAGE_CONF" envDefault:"80"` // percentage
		MinPiiConf       float64 `env:"MIN_PII_CONF" envDefault:"80"`   // percentage, compared as a fraction
		MaxRetries       int     `env:"MODERATION_MAX_RETRIES" envDefault:"3"`
		BatchParallelism int     `env:"MODERATION_BATCH_PARALLELISM" envDefault:"4"`
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT" envDefault:"8080"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"` // covers a synchronous moderation run
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"2"`
		URL     string `env:"PG_URL,required"`
	}

	// S3 is only needed for S3-compatible stores such as MinIO.
	S3 struct {
		Endpoint     string `env:"S3_ENDPOINT"`
		UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	}

	AWS struct {
		Region         string        `env:"AWS_REGION" envDefault:"us-east-1"`
		AccessKey      string        `env:"AWS_ACCESS_KEY_ID"`
		SecretKey      string        `env:"AWS_SECRET_ACCESS_KEY"`
		CfgLoadTimeout time.Duration `env:"AWS_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Kafka struct {
		Brokers      []string `env:"KAFKA_BROKERS,required"`
		GroupID      string   `env:"KAFKA_GROUP_ID" envDefault:"file-moderator"`
		Topic        string   `env:"KAFKA_TOPIC,required"`
		ResultsTopic string   `env:"KAFKA_RESULTS_TOPIC" envDefault:"moderation-results"`

		ProducerBatchTimeout time.Duration `env:"KAFKA_PRODUCER_BATCH_TIMEOUT" envDefault:"50ms"`
		ProducerWriteTimeout time.Duration `env:"KAFKA_PRODUCER_WRITE_TIMEOUT" envDefault:"10s"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		Retention           time.Duration `env:"OUTBOX_RELAY_RETENTION" envDefault:"168h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"2m"` // one notification, all its records with retries
		RetryBase       time.Duration `env:"KAFKA_CONTROLLER_RETRY_BASE" envDefault:"500ms"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"0"` // 0 means one per CPU
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}

	Tracing struct {
		Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w: %w", errs.ErrConfiguration, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w: %w", errs.ErrConfiguration, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var problems []error

	if c.Moderation.MinImageConf < 0 || c.Moderation.MinImageConf > 100 {
		problems = append(problems, fmt.Errorf("MIN_IMAGE_CONF must be within [0,100], got %v", c.Moderation.MinImageConf))
	}
	if c.Moderation.MinPiiConf < 0 || c.Moderation.MinPiiConf > 100 {
		problems = append(problems, fmt.Errorf("MIN_PII_CONF must be within [0,100], got %v", c.Moderation.MinPiiConf))
	}
	if c.Moderation.MaxRetries < 0 {
		problems = append(problems, errors.New("MODERATION_MAX_RETRIES must not be negative"))
	}
	if c.Moderation.BatchParallelism < 1 {
		problems = append(problems, errors.New("MODERATION_BATCH_PARALLELISM must be positive"))
	}

	return errors.Join(problems...)
}

// Thresholds converts the configured percentages to the scales the detectors report.
func (m Moderation) Thresholds() entity.ThresholdConfig {
	return entity.ThresholdConfig{
		MinImageConfidence: m.MinImageConf,
		MinPiiScore:        m.MinPiiConf / 100,
	}
}
