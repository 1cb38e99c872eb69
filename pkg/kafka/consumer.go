package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxHandlerRetries bounds handler attempts per message. A message that
// still fails afterwards is treated as a poison pill: published to the DLQ
// when one is attached, then committed so the partition keeps moving.
const maxHandlerRetries = 3

const consumerTracerName = "github.com/teamboardhq/teamboard/pkg/kafka"

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig holds reader settings for one topic and group.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// Consumer reads one topic, decodes the event envelope, and drives the
// handler with retries, metrics, and resumed trace context.
type Consumer struct {
	reader    *kafka.Reader
	logger    *slog.Logger
	handler   Handler
	dlq       *DLQProducer
	closeOnce sync.Once
}

func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})

	return &Consumer{
		reader:  r,
		logger:  logger,
		handler: handler,
	}
}

// WithDLQ attaches a dead-letter producer. Poison messages are parked there
// instead of being dropped.
func (c *Consumer) WithDLQ(dlq *DLQProducer) *Consumer {
	c.dlq = dlq
	return c
}

// Start consumes until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	topic := c.reader.Config().Topic
	group := c.reader.Config().GroupID
	c.logger.Info("consumer started",
		slog.String("topic", topic),
		slog.String("group", group),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", slog.String("topic", topic))
			return c.Close()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}
		ConsumerMessagesReceived.WithLabelValues(topic, group).Inc()

		c.processMessage(ctx, msg, topic, group)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message", slog.String("error", err.Error()))
		}
	}
}

// processMessage decodes and handles one message, retrying transient handler
// failures. It always returns with the message ready to commit; poison
// messages are routed to the DLQ first.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message, topic, group string) {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		ConsumerMessagesFailed.WithLabelValues(topic, group).Inc()
		c.logger.Error("failed to unmarshal event",
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
		)
		return
	}

	// Resume the producer's trace and record the handling span.
	msgCtx := ExtractTraceContext(ctx, msg.Headers)
	msgCtx, span := otel.Tracer(consumerTracerName).Start(msgCtx, "kafka.consume "+topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.kafka.consumer.group", group),
			attribute.String("event.type", event.EventType),
		),
	)
	defer span.End()

	start := time.Now()
	lastErr := c.handleWithRetry(msgCtx, event, msg)
	ConsumerProcessingDuration.WithLabelValues(topic, group).Observe(time.Since(start).Seconds())

	if lastErr == nil {
		ConsumerMessagesProcessed.WithLabelValues(topic, group).Inc()
		return
	}

	ConsumerMessagesFailed.WithLabelValues(topic, group).Inc()
	span.RecordError(lastErr)
	c.logger.Error("handler failed after all retries, parking poison message",
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("error", lastErr.Error()),
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.Int("retries", maxHandlerRetries),
	)

	if c.dlq != nil {
		if dlqErr := c.dlq.Publish(msgCtx, msg, lastErr, group); dlqErr != nil {
			c.logger.Error("failed to park message in DLQ", slog.String("error", dlqErr.Error()))
		} else {
			ConsumerDLQPublished.WithLabelValues(topic, group).Inc()
		}
	}
}

// handleWithRetry runs the handler up to maxHandlerRetries times with a
// linearly growing backoff.
func (c *Consumer) handleWithRetry(ctx context.Context, event *Event, msg kafka.Message) error {
	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			return nil
		}

		c.logger.Warn("handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", lastErr.Error()),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxHandlerRetries),
		)

		if attempt < maxHandlerRetries {
			backoff := time.Duration(attempt) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}

// Close is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

// TopicPrefix namespaces every teamboard topic.
const TopicPrefix = "teamboard"

// Topic builds a fully-qualified topic name, e.g. Topic("user", "invited")
// is "teamboard.user.invited".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
