/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.DocumentsRendered.WithLabelValues("docx").Add(3)
	m.CrawlsGenerated.Add(42)
	m.Objects.Set(2)
	m.ObserveRun(time.Now().Add(-time.Second), nil)

	path := filepath.Join(t.TempDir(), "shiftsheet.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		`shiftsheet_documents_rendered_total{format="docx"} 3`,
		"shiftsheet_crawls_generated_total 42",
		"shiftsheet_objects 2",
		"shiftsheet_last_success_timestamp_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("textfile missing %q:\n%s", want, body)
		}
	}
}

func TestObserveRunFailure(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun(time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.RunFailures); got != 1 {
		t.Fatalf("run failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastSuccess); got != 0 {
		t.Fatalf("last success = %v, want 0", got)
	}
}

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("init tracer: %v", err)
	}

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, errors.New("ignored"))
	span.End()

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	if got := samplerFor(1).Description(); got != "AlwaysOnSampler" {
		t.Fatalf("samplerFor(1) = %s", got)
	}
	if got := samplerFor(0).Description(); got != "AlwaysOffSampler" {
		t.Fatalf("samplerFor(0) = %s", got)
	}
	if got := samplerFor(0.5).Description(); !strings.HasPrefix(got, "TraceIDRatioBased") {
		t.Fatalf("samplerFor(0.5) = %s", got)
	}
}
