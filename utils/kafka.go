package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer publishes keyed events to the topic it was built for.
type KafkaProducer interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer fails fast when the broker is unreachable and makes sure
// topic exists before handing back a writer bound to it. Events are
// partitioned by key, so one user's events stay in order.
func NewKafkaProducer(broker, topic string) (KafkaProducer, error) {
	if broker == "" || topic == "" {
		return nil, errors.New("kafka broker and topic are required")
	}

	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka at %s: %w", broker, err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, topic); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &kafkaProducer{writer: writer}, nil
}

// ensureTopic creates topic through the cluster controller when the broker
// does not know it yet.
func ensureTopic(conn *kafka.Conn, topic string) error {
	if partitions, err := conn.ReadPartitions(topic); err == nil && len(partitions) > 0 {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find Kafka controller: %w", err)
	}
	cc, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka controller: %w", err)
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	return nil
}

func (k *kafkaProducer) Publish(ctx context.Context, key, value []byte) error {
	return k.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

func (k *kafkaProducer) Close() error {
	return k.writer.Close()
}
