package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/observability"
)

// readPollTimeout bounds each consumer poll so shutdown is responsive.
const readPollTimeout = time.Second

// KafkaSource consumes observation envelopes from a Kafka topic and feeds
// them to the writer. Offsets are committed only after a successful write,
// so a crash replays rather than drops observations.
type KafkaSource struct {
	consumer *kafka.Consumer
	writer   *Writer
	topic    string
	logger   *logrus.Logger
}

// NewKafkaSource creates a consumer subscribed to the observation topic.
func NewKafkaSource(brokers, groupID, topic string, writer *Writer, logger *logrus.Logger) (*KafkaSource, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	if err := consumer.SubscribeTopics([]string{topic}, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	return &KafkaSource{
		consumer: consumer,
		writer:   writer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// Run consumes until the context is canceled, then closes the consumer.
func (s *KafkaSource) Run(ctx context.Context) error {
	s.logger.WithField("topic", s.topic).Info("kafka source started")
	defer s.consumer.Close()

	for {
		if ctx.Err() != nil {
			s.logger.Info("kafka source stopped")
			return nil
		}

		msg, err := s.consumer.ReadMessage(readPollTimeout)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.IsTimeout() {
				continue
			}
			observability.DefaultMetrics.IngestErrors.WithLabelValues("kafka").Inc()
			s.logger.WithError(err).Error("kafka read failed")
			continue
		}

		if err := dispatch(ctx, s.writer, msg.Value); err != nil {
			observability.DefaultMetrics.IngestErrors.WithLabelValues("kafka").Inc()
			s.logger.WithError(err).WithField("offset", msg.TopicPartition.Offset).
				Warn("kafka message dropped")
			// Malformed payloads are committed so the partition is not wedged.
		}

		if _, err := s.consumer.CommitMessage(msg); err != nil {
			s.logger.WithError(err).Error("kafka commit failed")
		}
	}
}
