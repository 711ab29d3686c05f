// Package kafka wraps segmentio/kafka-go for the two event streams of the
// search service: corpus changes, which every replica must see, and search
// events, which feed the analytics aggregator. Values travel as JSON.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/resilience"
)

// MessageHandler processes one message. Errors marked with
// resilience.Permanent are not retried.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads one topic and hands every message to a MessageHandler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler
	retry   resilience.RetryConfig
}

// NewConsumer joins group on topic. Replicas that must each observe every
// message pass a group unique to the process (see InstanceGroup).
func NewConsumer(cfg config.KafkaConfig, topic, group string, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     group,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:  r,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic, "group", group),
		handler: handler,
		retry:   resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond},
	}
}

// InstanceGroup derives a consumer group that only this process uses.
func InstanceGroup(base, purpose string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fmt.Sprintf("pid-%d", os.Getpid())
	}
	return fmt.Sprintf("%s-%s-%s", base, purpose, host)
}

// Start consumes until ctx is cancelled. A message is committed once the
// handler succeeds, fails permanently, or exhausts its retries; a message
// that keeps failing is logged and skipped so it cannot stall the topic.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("fetch failed", "error", err)
			continue
		}
		log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)
		log.Debug("message received", "key", string(msg.Key), "value_size", len(msg.Value))

		err = resilience.Retry(ctx, "handle-"+msg.Topic, c.retry, func(ctx context.Context) error {
			return c.handler(ctx, msg.Key, msg.Value)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("skipping message", "permanent", resilience.IsPermanent(err), "error", err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error("commit failed", "error", err)
		}
	}
}

// DecodeJSON unmarshals a message value into T. Decoding failures are
// permanent: retrying cannot repair the payload.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, resilience.Permanent(fmt.Errorf("decoding kafka message: %w", err))
	}
	return result, nil
}
