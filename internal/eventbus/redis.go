/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/shiftsheet/internal/events"
)

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string

	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// Circuit breaker
	MaxFailures int
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "localhost:6379",
		ChannelPrefix: "shiftsheet:events:",
		DialTimeout:   5 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxFailures:   3,
	}
}

// RedisPublisher publishes events on Redis pub/sub channels.
// After MaxFailures consecutive errors the circuit opens and later events are
// dropped without contacting Redis.
type RedisPublisher struct {
	client *redis.Client
	cfg    RedisConfig
	logger zerolog.Logger
	nodeID string

	mu        sync.Mutex
	open      bool
	failCount int
	dropped   int
}

// NewRedisPublisher creates a Redis publisher. An unreachable server is not
// an error; the publisher starts with the circuit open and drops every event.
func NewRedisPublisher(cfg RedisConfig, logger zerolog.Logger) *RedisPublisher {
	defaults := DefaultRedisConfig()
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = defaults.ChannelPrefix
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaults.DialTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaults.MaxFailures
	}

	rp := &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   -1,
		}),
		cfg:    cfg,
		logger: logger.With().Str("component", "redis_publisher").Logger(),
		nodeID: generateNodeID(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rp.client.Ping(ctx).Err(); err != nil {
		rp.logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis connection failed, run events will be dropped")
		rp.open = true
		return rp
	}

	rp.logger.Info().Str("addr", cfg.Addr).Msg("Redis publisher initialized")
	return rp
}

// Channel returns the pub/sub channel for eventType.
func (rp *RedisPublisher) Channel(eventType events.EventType) string {
	return rp.cfg.ChannelPrefix + string(eventType)
}

// Publish sends an event to Redis. Events are dropped and logged while the
// circuit is open.
func (rp *RedisPublisher) Publish(eventType events.EventType, payload events.Payload) {
	if rp.circuitOpen() {
		rp.drop(eventType)
		return
	}

	data, err := marshalMessage(eventType, payload, rp.nodeID)
	if err != nil {
		rp.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to encode event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rp.cfg.WriteTimeout)
	defer cancel()
	if err := rp.client.Publish(ctx, rp.Channel(eventType), data).Err(); err != nil {
		rp.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish event")
		rp.handleFailure()
		return
	}
	rp.resetFailures()
}

// Close closes the Redis client.
func (rp *RedisPublisher) Close() error {
	rp.mu.Lock()
	dropped := rp.dropped
	rp.mu.Unlock()
	if dropped > 0 {
		rp.logger.Warn().Int("dropped", dropped).Msg("run events were not delivered to Redis")
	}
	return rp.client.Close()
}

func (rp *RedisPublisher) circuitOpen() bool {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.open
}

func (rp *RedisPublisher) drop(eventType events.EventType) {
	rp.mu.Lock()
	rp.dropped++
	rp.mu.Unlock()
	rp.logger.Warn().Str("event_type", string(eventType)).Msg("Redis unavailable, event dropped")
}

func (rp *RedisPublisher) handleFailure() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.failCount++
	rp.dropped++
	if rp.failCount >= rp.cfg.MaxFailures && !rp.open {
		rp.open = true
		rp.logger.Warn().Int("failures", rp.failCount).Msg("circuit breaker opened, further events will be dropped")
	}
}

func (rp *RedisPublisher) resetFailures() {
	rp.mu.Lock()
	rp.failCount = 0
	rp.mu.Unlock()
}
