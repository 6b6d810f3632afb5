package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// RecordHandler processes one consumed record.
type RecordHandler func(ctx context.Context, record *kgo.Record) error

// Consumer reads a topic as part of a consumer group and commits offsets
// manually after each fully handled batch.
type Consumer struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewConsumer(ctx context.Context, bootstrapServers []string, topic, group string, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(bootstrapServers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}
	return &Consumer{client: client, logger: logger}, nil
}

// Client exposes the underlying client, for producing to a dead-letter topic.
func (c *Consumer) Client() *kgo.Client {
	return c.client
}

// Run polls until ctx ends, handing every record to handle. The first
// handler error stops Run before the batch is committed, so the group
// redelivers the batch to the next consumer.
func (c *Consumer) Run(ctx context.Context, handle RecordHandler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}

		fetches.EachError(func(t string, p int32, err error) {
			c.logger.Error("failed to fetch from kafka", "topic", t, "partition", p, "error", err)
		})

		for iter := fetches.RecordIter(); !iter.Done(); {
			record := iter.Next()
			if err := handle(ctx, record); err != nil {
				return fmt.Errorf("handle %s/%d@%d: %w", record.Topic, record.Partition, record.Offset, err)
			}
		}

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.logger.Error("error committing offsets", "error", err)
		}
	}
}

func (c *Consumer) Close() {
	c.client.Close()
}
