/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/shiftsheet/internal/events"
)

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL           string
	Token         string
	SubjectPrefix string
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "shiftsheet.events",
		Timeout:       5 * time.Second,
	}
}

// NATSPublisher publishes events to subjects "<prefix>.<event type>".
type NATSPublisher struct {
	conn    *nats.Conn
	prefix  string
	timeout time.Duration
	nodeID  string
	logger  zerolog.Logger
}

// NewNATSPublisher connects to NATS.
func NewNATSPublisher(cfg NATSConfig, logger zerolog.Logger) (*NATSPublisher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultNATSConfig().Timeout
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultNATSConfig().SubjectPrefix
	}

	opts := []nats.Option{
		nats.Name("shiftsheet"),
		nats.Timeout(cfg.Timeout),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info().Str("url", cfg.URL).Str("subject_prefix", cfg.SubjectPrefix).Msg("NATS publisher connected")

	return &NATSPublisher{
		conn:    conn,
		prefix:  cfg.SubjectPrefix,
		timeout: cfg.Timeout,
		nodeID:  generateNodeID(),
		logger:  logger.With().Str("component", "nats_publisher").Logger(),
	}, nil
}

// Subject returns the subject used for eventType.
func (np *NATSPublisher) Subject(eventType events.EventType) string {
	return np.prefix + "." + string(eventType)
}

// Publish sends an event; failures are logged.
func (np *NATSPublisher) Publish(eventType events.EventType, payload events.Payload) {
	data, err := marshalMessage(eventType, payload, np.nodeID)
	if err != nil {
		np.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to encode event")
		return
	}
	if err := np.conn.Publish(np.Subject(eventType), data); err != nil {
		np.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish event")
	}
}

// Close flushes pending messages and closes the connection.
func (np *NATSPublisher) Close() error {
	defer np.conn.Close()
	if err := np.conn.FlushTimeout(np.timeout); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}
