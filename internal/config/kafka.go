package config

import (
	"github.com/segmentio/kafka-go"
	"os"
	"strings"
)

const defaultBrokers = "localhost:9092,localhost:9093,localhost:9094"

// NewKafkaWriter builds the writer order and payment events are published
// on. KAFKA_BROKERS is a comma-separated list; a local three-broker setup
// is the fallback.
func NewKafkaWriter(topic string) *kafka.Writer {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = defaultBrokers
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}
