/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/shiftsheet/internal/config"
	"github.com/friendsincode/shiftsheet/internal/events"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 12, 31, 15, 30, 0, 0, time.UTC)

	got, err := parseDate("", now, time.UTC)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if got.Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("default date = %s, want tomorrow", got)
	}

	for _, value := range []string{"2024-03-01", "2024-03-01T05:00", "2024-03-01T05:00:10"} {
		got, err := parseDate(value, now, time.UTC)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if got.Format("2006-01-02") != "2024-03-01" {
			t.Fatalf("parse %q = %s", value, got)
		}
	}

	if _, err := parseDate("01.03.2024", now, time.UTC); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestShiftParams(t *testing.T) {
	cfg = config.Default()
	cfg.Timezone = "UTC"
	cfg.StartHour = 20
	t.Cleanup(func() { flagDate, flagNum = "", 1 })

	flagDate, flagNum = "2024-03-01T05:00", 2
	p, err := shiftParams(time.Now())
	if err != nil {
		t.Fatalf("shift params: %v", err)
	}
	want := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	if !p.First.Equal(want) || p.Shifts != 2 {
		t.Fatalf("params = %+v, want first %s and 2 shifts", p, want)
	}

	flagNum = 0
	if _, err := shiftParams(time.Now()); err == nil {
		t.Fatal("expected error for --num 0")
	}
}

func TestNewGeneratorHonoursSeed(t *testing.T) {
	logger = zerolog.Nop()
	cfg = config.Default()
	seed := uint64(99)
	cfg.Seed = &seed

	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	a, err := newGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	b, err := newGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	first := a.Generate(start, start.Add(24*time.Hour))
	second := b.Generate(start, start.Add(24*time.Hour))
	if len(first) != len(second) {
		t.Fatalf("seeded generators disagree: %d vs %d crawls", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("crawl %d differs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestGenerateWritesCalendarFiles(t *testing.T) {
	for _, key := range []string{"SHIFTSHEET_CONFIG_PATH", "SHIFTSHEET_ENV", "ENVIRONMENT", "SHIFTSHEET_TIMEZONE", "TZ",
		"SHIFTSHEET_S3_BUCKET", "S3_BUCKET", "SHIFTSHEET_NOTIFY", "SHIFTSHEET_FORMAT", "SHIFTSHEET_SEED"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	objects := filepath.Join(dir, "objects.txt")
	if err := os.WriteFile(objects, []byte("Gate\n\nBoiler room\n"), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	metricsFile := filepath.Join(dir, "shiftsheet.prom")
	t.Setenv("SHIFTSHEET_METRICS_TEXTFILE", metricsFile)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{
		"-d", "2024-01-01", "-n", "2", "-s", "8",
		"--objects", objects, "--output", outDir, "--format", "ics", "--seed", "5",
		"--log-level", "error",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, name := range []string{"01012024-02012024.ics", "02012024-03012024.ics"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), "SUMMARY:Crawl 2: Boiler room") {
			t.Fatalf("%s missing second object:\n%s", name, data)
		}
		if !strings.Contains(stdout.String(), name) {
			t.Fatalf("stdout does not list %s: %q", name, stdout.String())
		}
	}
	if _, err := os.Stat(metricsFile); err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
}

func TestNewPublisherAppliesWebhookEventFilter(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Event string `json:"event"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		received = append(received, body.Event)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger = zerolog.Nop()
	cfg = config.Default()
	cfg.Notify = config.NotifyWebhook
	cfg.WebhookURL = srv.URL
	cfg.WebhookEvents = []string{"run.completed"}

	pub, err := newPublisher()
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	pub.Publish(events.EventShiftRendered, events.Payload{"key": "01012024-02012024.docx"})
	pub.Publish(events.EventRunCompleted, events.Payload{"shifts": 1})

	if len(received) != 1 || received[0] != "run.completed" {
		t.Fatalf("delivered events = %v, want only run.completed", received)
	}
}
