package bootstrap

import (
	"context"
	"time"

	"github.com/baechuer/go-api-starter/internal/application/notify"
	"github.com/baechuer/go-api-starter/internal/config"
	"github.com/baechuer/go-api-starter/internal/infrastructure/email"
	"github.com/baechuer/go-api-starter/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/go-api-starter/internal/infrastructure/redis"
	"github.com/baechuer/go-api-starter/internal/logger"
)

// MailWorker consumes queued email jobs and delivers them over SMTP.
// With EMAIL_ENABLED off it logs instead of sending, which is what you
// want against a local stack.
type MailWorker struct {
	consumer *rabbitmq.Consumer
}

func NewMailWorker() (*MailWorker, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var sender notify.Sender
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			Timeout:  10 * time.Second,
			Insecure: !cfg.SMTPStartTLS,
		}, logger.Logger)
		logger.Logger.Info().Str("host", cfg.SMTPHost).Int("port", cfg.SMTPPort).Msg("smtp sender enabled")
	} else {
		sender = email.NewFakeSender(logger.Logger)
		logger.Logger.Info().Msg("email disabled; logging outgoing mail instead")
	}

	// Redis dedupes deliveries across restarts. Without it the worker
	// still runs, it just relies on the broker's at-least-once semantics.
	var cleanupFns []func()
	var idem notify.IdempotencyStore

	if c, err := redis.New(cfg.RedisURL); err != nil {
		logger.Logger.Warn().Err(err).Msg("redis config invalid; email idempotency disabled")
	} else {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.Ping(pingCtx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; email idempotency disabled")
			_ = c.Close()
		} else {
			idem = redis.NewIdempotencyStore(c)
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
		cancel()
	}

	svc := notify.NewService(sender, idem, cfg.EmailIdempotencyTTL, logger.Logger)

	consumer := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.RabbitExchange,
		Queue:    cfg.MailQueue,
		Prefetch: cfg.MailPrefetch,
		Workers:  cfg.MailWorkers,
		Tag:      "mailworker",
	}, svc, logger.Logger)

	w := &MailWorker{consumer: consumer}
	cleanup := func() { runCleanup(cleanupFns) }
	return w, cleanup, nil
}

// Start launches the consumer and blocks until ctx is cancelled.
func (w *MailWorker) Start(ctx context.Context) error {
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (w *MailWorker) Stop(ctx context.Context) error {
	return w.consumer.Stop(ctx)
}
