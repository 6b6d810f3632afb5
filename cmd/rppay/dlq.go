package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kgo"

	"rp-pay-dashboard/internal/adapters/messaging/kafka"
)

// dlqCmd inspects and replays the dead-letter topic of the payment events topic.
// It talks to Kafka only, so it skips building the dashboard stack.
func (c *cli) dlqCmd() *cobra.Command {
	var brokers string
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and replay dead-lettered payment events",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			if brokers == "" {
				brokers = c.cfg.Kafka.BootstrapServers
			}
			if len(kafka.SplitServers(brokers)) == 0 {
				return errors.New("no kafka brokers configured")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&brokers, "brokers", "", "Kafka brokers; defaults to the config")

	var limit int
	view := &cobra.Command{
		Use:   "view",
		Short: "Show dead-lettered messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic := kafka.DLQTopic(c.cfg.Kafka.Topic)
			client, err := kgo.NewClient(
				kgo.SeedBrokers(kafka.SplitServers(brokers)...),
				kgo.ConsumeTopics(topic),
				kgo.FetchMaxWait(5*time.Second),
				kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			)
			if err != nil {
				return fmt.Errorf("create consumer: %w", err)
			}
			defer client.Close()

			w := c.table()
			fmt.Fprintln(w, "PARTITION:OFFSET\tKEY\tERROR_TYPE\tERROR_STRING")
			shown := 0
			for shown < limit {
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				fetches := client.PollFetches(ctx)
				cancel()
				if fetches.IsClientClosed() || len(fetches.Records()) == 0 {
					break
				}
				fetches.EachRecord(func(r *kgo.Record) {
					if shown >= limit {
						return
					}
					errorType, errorString := kafka.ErrorHeaders(r.Headers)
					fmt.Fprintf(w, "%d:%d\t%s\t%s\t%s\n", r.Partition, r.Offset, r.Key, errorType, errorString)
					shown++
				})
			}
			return w.Flush()
		},
	}
	view.Flags().IntVar(&limit, "limit", 10, "Number of messages to show")

	retry := &cobra.Command{
		Use:   "retry <partition:offset>",
		Short: "Send a dead-lettered message back to the events topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition, offset, err := kafka.ParsePartitionOffset(args[0])
			if err != nil {
				return err
			}
			topic := kafka.DLQTopic(c.cfg.Kafka.Topic)
			client, err := kgo.NewClient(
				kgo.SeedBrokers(kafka.SplitServers(brokers)...),
				kgo.ConsumePartitions(map[string]map[int32]kgo.Offset{
					topic: {partition: kgo.NewOffset().At(offset)},
				}),
			)
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			fetches := client.PollRecords(ctx, 1)
			if err := fetches.Err(); err != nil {
				return fmt.Errorf("read message: %w", err)
			}
			records := fetches.Records()
			if len(records) == 0 || records[0].Offset != offset {
				return fmt.Errorf("no message at %s", args[0])
			}

			replay := &kgo.Record{Topic: c.cfg.Kafka.Topic, Key: records[0].Key, Value: records[0].Value}
			if err := client.ProduceSync(ctx, replay).FirstErr(); err != nil {
				return fmt.Errorf("replay message: %w", err)
			}
			c.printf("Replayed %s to %s\n", args[0], c.cfg.Kafka.Topic)
			return nil
		},
	}

	cmd.AddCommand(view, retry)
	return cmd
}
