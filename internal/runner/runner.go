/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package runner drives a generation run: one document per consecutive
// 24-hour shift.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/friendsincode/shiftsheet/internal/events"
	"github.com/friendsincode/shiftsheet/internal/schedule"
	"github.com/friendsincode/shiftsheet/internal/storage"
	"github.com/friendsincode/shiftsheet/internal/telemetry"
)

// ErrInvalidShifts is returned when fewer than one shift is requested.
var ErrInvalidShifts = errors.New("number of shifts must be at least 1")

// Params describes one run.
type Params struct {
	First  time.Time // start of the first shift
	Shifts int
	Names  []string
}

// Result summarizes a run. On failure it lists what was written before the
// error.
type Result struct {
	RunID  string
	Keys   []string
	Crawls int
}

// Config wires a Runner. Publisher and Metrics are optional.
type Config struct {
	Generator schedule.Generator
	Renderer  Renderer
	Store     storage.ObjectStore
	Publisher events.Publisher
	Metrics   *telemetry.Metrics
	Logger    zerolog.Logger
}

// Runner renders and stores shift documents.
type Runner struct {
	gen       schedule.Generator
	renderer  Renderer
	store     storage.ObjectStore
	publisher events.Publisher
	metrics   *telemetry.Metrics
	logger    zerolog.Logger
}

// New constructs a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Generator == nil || cfg.Renderer == nil || cfg.Store == nil {
		return nil, errors.New("runner requires a generator, renderer and store")
	}
	return &Runner{
		gen:       cfg.Generator,
		renderer:  cfg.Renderer,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With().Str("component", "runner").Logger(),
	}, nil
}

// Run writes p.Shifts documents, one per consecutive shift starting at
// p.First. The first render or store error stops the run; documents already
// written are kept.
func (r *Runner) Run(ctx context.Context, p Params) (*Result, error) {
	if p.Shifts < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidShifts, p.Shifts)
	}

	started := time.Now()
	res := &Result{RunID: uuid.NewString(), Keys: make([]string, 0, p.Shifts)}
	logger := r.logger.With().Str("run_id", res.RunID).Logger()

	ctx, span := telemetry.StartSpan(ctx, "shiftsheet.run",
		attribute.String("run.id", res.RunID),
		attribute.Int("run.shifts", p.Shifts),
		attribute.Int("run.objects", len(p.Names)),
		attribute.String("run.format", r.renderer.Format()),
	)
	defer span.End()

	if r.metrics != nil {
		r.metrics.Objects.Set(float64(len(p.Names)))
	}

	logger.Info().
		Time("first_shift", p.First).
		Int("shifts", p.Shifts).
		Int("objects", len(p.Names)).
		Str("format", r.renderer.Format()).
		Msg("generation started")

	window := schedule.NewWindow(p.First)
	for i := 0; i < p.Shifts; i++ {
		if err := ctx.Err(); err != nil {
			return res, r.fail(span, logger, res, started, err)
		}

		key, crawls, err := r.runShift(ctx, res.RunID, window, p.Names)
		if err != nil {
			return res, r.fail(span, logger, res, started, err)
		}
		res.Keys = append(res.Keys, key)
		res.Crawls += crawls

		window = window.Next()
	}

	if r.metrics != nil {
		r.metrics.ObserveRun(started, nil)
	}
	r.publish(events.EventRunCompleted, events.Payload{
		"run_id": res.RunID,
		"shifts": len(res.Keys),
		"keys":   res.Keys,
		"crawls": res.Crawls,
	})
	logger.Info().
		Int("documents", len(res.Keys)).
		Int("crawls", res.Crawls).
		Dur("duration", time.Since(started)).
		Msg("generation finished")
	return res, nil
}

func (r *Runner) runShift(ctx context.Context, runID string, window schedule.Window, names []string) (string, int, error) {
	key := window.Filename(r.renderer.Extension())
	ctx, span := telemetry.StartSpan(ctx, "shiftsheet.shift", attribute.String("shift.key", key))
	defer span.End()

	sc := schedule.BuildContext(schedule.BuildObjects(names, window, r.gen), window)

	data, err := r.renderer.Render(ctx, sc)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", 0, fmt.Errorf("render %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		telemetry.RecordError(span, err)
		return "", 0, fmt.Errorf("store %s: %w", key, err)
	}

	crawls := sc.CrawlCount()
	span.SetAttributes(attribute.Int("shift.crawls", crawls))
	if r.metrics != nil {
		r.metrics.DocumentsRendered.WithLabelValues(r.renderer.Format()).Inc()
		r.metrics.CrawlsGenerated.Add(float64(crawls))
	}

	r.logger.Info().
		Str("run_id", runID).
		Str("document", r.store.URL(key)).
		Str("shift_start_day", sc.StartDay).
		Int("crawls", crawls).
		Msg("shift document written")

	r.publish(events.EventShiftRendered, events.Payload{
		"run_id":          runID,
		"key":             key,
		"url":             r.store.URL(key),
		"shift_start_day": sc.StartDay,
		"shift_end_day":   sc.EndDay,
		"objects":         len(sc.Objects),
		"crawls":          crawls,
	})
	return key, crawls, nil
}

func (r *Runner) fail(span trace.Span, logger zerolog.Logger, res *Result, started time.Time, err error) error {
	telemetry.RecordError(span, err)
	if r.metrics != nil {
		r.metrics.ObserveRun(started, err)
	}
	r.publish(events.EventRunFailed, events.Payload{
		"run_id": res.RunID,
		"error":  err.Error(),
		"keys":   res.Keys,
	})
	logger.Error().
		Err(err).
		Int("documents_written", len(res.Keys)).
		Msg("generation aborted")
	return err
}

func (r *Runner) publish(eventType events.EventType, payload events.Payload) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(eventType, payload)
}

// Preview builds the shift contexts a run would render, without rendering or
// storing anything.
func Preview(gen schedule.Generator, p Params) ([]*schedule.ShiftContext, error) {
	if p.Shifts < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidShifts, p.Shifts)
	}
	shifts := make([]*schedule.ShiftContext, 0, p.Shifts)
	window := schedule.NewWindow(p.First)
	for i := 0; i < p.Shifts; i++ {
		shifts = append(shifts, schedule.BuildContext(schedule.BuildObjects(p.Names, window, gen), window))
		window = window.Next()
	}
	return shifts, nil
}
