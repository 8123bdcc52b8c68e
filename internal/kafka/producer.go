package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/model"
)

// LogForwarder publishes parsed emulator log entries for downstream
// consumers. Forwarding is best effort: retrieval never fails because the
// broker is down.
type LogForwarder interface {
	Forward(ctx context.Context, logs []model.LogEntry) error
	Close() error
}

type kafkaLogForwarder struct {
	writer *kafka.Writer
	topic  string
}

type noopForwarder struct{}

func (noopForwarder) Forward(ctx context.Context, logs []model.LogEntry) error { return nil }
func (noopForwarder) Close() error                                             { return nil }

func NewLogForwarder(lc fx.Lifecycle, cfg *config.Config) LogForwarder {
	if !cfg.Kafka.Enabled {
		log.Info().Msg("Kafka forwarding disabled")
		return noopForwarder{}
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.LogTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 500 * time.Millisecond,
		Async:        true,
	})
	f := &kafkaLogForwarder{
		writer: writer,
		topic:  cfg.Kafka.LogTopic,
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka forwarder")
			return f.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.LogTopic).Msg("Kafka forwarder initialized")
	return f
}

// Forward publishes each entry keyed by its service so entries for one
// service land on one partition in order.
func (f *kafkaLogForwarder) Forward(ctx context.Context, logs []model.LogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(logs))
	for _, entry := range logs {
		value, err := json.Marshal(entry)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal log entry for Kafka")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(entry.Service),
			Value: value,
		})
	}
	if len(messages) == 0 {
		return nil
	}

	if err := f.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write messages to Kafka")
		return err
	}

	log.Debug().Int("message_count", len(messages)).Str("topic", f.topic).Msg("Forwarded log entries to Kafka")
	return nil
}

func (f *kafkaLogForwarder) Close() error {
	return f.writer.Close()
}
