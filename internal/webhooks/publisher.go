/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package webhooks delivers run events to an HTTP endpoint.
package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/shiftsheet/internal/events"
	"github.com/friendsincode/shiftsheet/internal/version"
)

// Payload is the JSON body sent to the endpoint.
type Payload struct {
	ID        string         `json:"id"`
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Data      events.Payload `json:"data"`
}

// Config configures a Publisher.
type Config struct {
	URL     string
	Secret  string   // signs the body when set
	Events  []string // empty means every event
	Timeout time.Duration
}

// Publisher POSTs each event to a single URL. Deliveries are synchronous so
// they finish before the process exits.
type Publisher struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewPublisher creates a webhook publisher.
func NewPublisher(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Publisher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "webhooks").Logger(),
	}, nil
}

// Publish sends the event. Failures are logged.
func (p *Publisher) Publish(eventType events.EventType, payload events.Payload) {
	if !p.handles(eventType) {
		return
	}
	if err := p.send(context.Background(), eventType, payload); err != nil {
		p.logger.Warn().Err(err).Str("event", string(eventType)).Str("url", p.cfg.URL).Msg("webhook delivery failed")
		return
	}
	p.logger.Debug().Str("event", string(eventType)).Msg("webhook delivered")
}

// Close is a no-op; deliveries never outlive Publish.
func (p *Publisher) Close() error {
	return nil
}

func (p *Publisher) handles(eventType events.EventType) bool {
	if len(p.cfg.Events) == 0 {
		return true
	}
	for _, e := range p.cfg.Events {
		if strings.TrimSpace(e) == string(eventType) {
			return true
		}
	}
	return false
}

func (p *Publisher) send(ctx context.Context, eventType events.EventType, data events.Payload) error {
	body, err := json.Marshal(Payload{
		ID:        uuid.NewString(),
		Event:     string(eventType),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "shiftsheet-webhook/"+version.Version)
	req.Header.Set("X-Shiftsheet-Event", string(eventType))
	req.Header.Set("X-Shiftsheet-Timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	if p.cfg.Secret != "" {
		req.Header.Set("X-Shiftsheet-Signature", Sign(body, p.cfg.Secret))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the HMAC-SHA256 signature header value for body.
func Sign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}
