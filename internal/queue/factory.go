package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/soltixdb/correlator/internal/config"
)

// Supported queue.type values
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeNATS   = "nats"
	TypeRedis  = "redis"
	TypeKafka  = "kafka"
)

// NewQueue creates a new Queue instance based on configuration.
// An empty type or "none" yields a queue that drops every message.
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	switch strings.ToLower(cfg.Type) {
	case "", TypeNone:
		return nopQueue{}, nil

	case TypeMemory:
		return newMemoryQueue(), nil

	case TypeNATS:
		return newNATSQueue(cfg.URL, cfg.Username, cfg.Password)

	case TypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})

	case TypeKafka:
		brokers := cfg.KafkaBrokers
		if len(brokers) == 0 && cfg.URL != "" {
			brokers = strings.Split(cfg.URL, ",")
		}
		return newKafkaQueue(KafkaConfig{
			Brokers: brokers,
			GroupID: cfg.KafkaGroupID,
		})

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: none, memory, nats, redis, kafka)", cfg.Type)
	}
}

// nopQueue accepts and discards every message
type nopQueue struct{}

func (nopQueue) Publish(_ context.Context, _ string, _ []byte) error { return nil }
func (nopQueue) Subscribe(_ string, _ MessageHandler) error         { return nil }
func (nopQueue) Unsubscribe(_ string) error                         { return nil }
func (nopQueue) Close() error                                       { return nil }
