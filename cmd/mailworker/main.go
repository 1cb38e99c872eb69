package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/teamboardhq/teamboard/internal/config"
	"github.com/teamboardhq/teamboard/internal/mailer"
	"github.com/teamboardhq/teamboard/internal/mailworker"
	"github.com/teamboardhq/teamboard/pkg/httpclient"
	pkgkafka "github.com/teamboardhq/teamboard/pkg/kafka"
	"github.com/teamboardhq/teamboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("teamboard-mailworker", cfg.LogLevel)
	log.Info("starting mail worker",
		slog.String("environment", cfg.Environment),
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("provider_url", cfg.MailProviderURL),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("mail worker error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("mail worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// The mail provider sits behind a circuit breaker so a flapping
	// provider does not pile up in-flight deliveries.
	httpClient := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(httpClient,
		httpclient.DefaultCircuitBreakerConfig("mail-provider"), log)

	m := mailer.NewHTTPMailer(cbClient, cfg.MailProviderURL, cfg.MailAPIKey, cfg.MailFrom, log)
	worker := mailworker.NewWorker(m, cfg.FrontendBaseURL, log)

	// Redelivered events are deduplicated by event ID for the configured TTL.
	store := pkgkafka.NewMemoryIdempotencyStore(cfg.MailIdempotencyTTL())
	handle := pkgkafka.IdempotentHandler(store, worker.Handle, cfg.MailConsumerGroup, log)

	// Poison messages end up on a per-topic DLQ instead of being dropped.
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, log)
	defer func() {
		if err := dlq.Close(); err != nil {
			log.Error("dlq producer close error", slog.String("error", err.Error()))
		}
	}()

	// One consumer per topic; each reader runs until the context is canceled.
	topics := mailworker.Topics()
	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.MailConsumerGroup,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}, handle, log).WithDLQ(dlq)
		consumers = append(consumers, consumer)
	}

	errCh := make(chan error, len(consumers))
	for _, consumer := range consumers {
		c := consumer
		go func() {
			if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			log.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}

	return runErr
}
