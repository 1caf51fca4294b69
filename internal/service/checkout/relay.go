package checkout

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bmaxtar/storefront/internal/domain"
	"github.com/bmaxtar/storefront/internal/metrics"
)

const (
	defaultPollInterval   = 1 * time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// RelayOptions задаёт параметры outbox relay.
type RelayOptions struct {
	Logger         *log.Entry
	Metrics        *metrics.StorefrontMetrics
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// RelayOption настраивает Relay.
type RelayOption func(*RelayOptions)

// WithLogger задаёт logger для relay.
func WithLogger(logger *log.Entry) RelayOption {
	return func(opts *RelayOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики relay.
func WithMetrics(m *metrics.StorefrontMetrics) RelayOption {
	return func(opts *RelayOptions) {
		opts.Metrics = m
	}
}

// WithPollInterval задаёт частоту опроса outbox.
func WithPollInterval(interval time.Duration) RelayOption {
	return func(opts *RelayOptions) {
		opts.PollInterval = interval
	}
}

// WithBatchSize задаёт размер батча из outbox.
func WithBatchSize(batchSize int) RelayOption {
	return func(opts *RelayOptions) {
		opts.BatchSize = batchSize
	}
}

// WithMaxAttempts задаёт число попыток публикации сообщения.
func WithMaxAttempts(maxAttempts int) RelayOption {
	return func(opts *RelayOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) RelayOption {
	return func(opts *RelayOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Relay публикует pending-сообщения из transactional outbox в брокер.
type Relay struct {
	repo           domain.OutboxRepository
	publisher      domain.OutboxPublisher
	logger         *log.Entry
	metrics        *metrics.StorefrontMetrics
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewRelay создаёт outbox relay.
func NewRelay(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...RelayOption) *Relay {
	opts := RelayOptions{
		PollInterval:   defaultPollInterval,
		BatchSize:      defaultBatchSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "outbox-relay")
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Relay{
		repo:           repo,
		publisher:      publisher,
		logger:         logger,
		metrics:        opts.Metrics,
		pollInterval:   opts.PollInterval,
		batchSize:      opts.BatchSize,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// Run запускает периодический polling outbox до отмены ctx.
func (r *Relay) Run(ctx context.Context) {
	if r.repo == nil || r.publisher == nil {
		r.logger.Warn("outbox relay is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один polling-цикл.
func (r *Relay) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	events, err := r.repo.PullPending(r.batchSize)
	if err != nil {
		r.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return
	}
	if r.metrics != nil {
		r.metrics.SetOutboxPending(len(events))
	}
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return
		}

		if err := r.publishWithRetry(ctx, event); err != nil {
			r.logger.WithError(err).WithFields(log.Fields{
				"outbox_id":  event.ID,
				"event_type": event.EventType,
			}).Error("outbox publish failed after retries")
			if r.metrics != nil {
				r.metrics.RecordOutboxPublishFailed()
			}
			// Сообщение остаётся pending и будет повторено в следующем цикле.
			continue
		}

		if r.metrics != nil {
			r.metrics.RecordOutboxPublished()
		}
		if err := r.repo.MarkPublished(event.ID); err != nil {
			r.logger.WithError(err).WithField("outbox_id", event.ID).Warn("failed to mark outbox message published")
		}
	}
}

func (r *Relay) publishWithRetry(ctx context.Context, event domain.OutboxMessage) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.publisher.Publish(event)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= r.maxAttempts {
			break
		}

		delay := r.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.maxAttempts, lastErr)
}

// retryBackoff возвращает задержку перед повтором: base * 2^(attempt-1).
func (r *Relay) retryBackoff(attempt int) time.Duration {
	delay := r.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
