/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"testing"
	"time"

	"github.com/friendsincode/shiftsheet/internal/crawl"
)

func newTestGenerator(t *testing.T, seed uint64) *crawl.Generator {
	t.Helper()

	gen, err := crawl.NewGenerator(crawl.DefaultIntervals(), crawl.NewRand(seed))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return gen
}

func TestWindowBoundsAndFilename(t *testing.T) {
	w := NewWindow(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	if got := w.End.Sub(w.Start); got != 24*time.Hour {
		t.Fatalf("window length = %s, want 24h", got)
	}
	if w.StartDay() != "01.01.2024" || w.EndDay() != "02.01.2024" {
		t.Fatalf("days = %s..%s", w.StartDay(), w.EndDay())
	}
	if got := w.Filename(".docx"); got != "01012024-02012024.docx" {
		t.Fatalf("filename = %q", got)
	}

	next := w.Next()
	if !next.Start.Equal(w.End) {
		t.Fatalf("next start = %v, want %v", next.Start, w.End)
	}
	if got := next.Filename(".docx"); got != "02012024-03012024.docx" {
		t.Fatalf("next filename = %q", got)
	}
}

func TestWindowFollowsCalendarDaysAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 27.10.2024 is the fall-back day in Berlin: 25 hours long.
	w := NewWindow(time.Date(2024, 10, 27, 0, 0, 0, 0, berlin))
	if got := w.Filename(".docx"); got != "27102024-28102024.docx" {
		t.Fatalf("filename = %q", got)
	}
	if w.StartDay() != "27.10.2024" || w.EndDay() != "28.10.2024" {
		t.Fatalf("days = %s..%s", w.StartDay(), w.EndDay())
	}
	if got := w.End.Sub(w.Start); got != 25*time.Hour {
		t.Fatalf("fall-back shift length = %s, want 25h", got)
	}

	want := []string{"28102024-29102024.docx", "29102024-30102024.docx"}
	for i, name := range want {
		w = w.Next()
		if got := w.Filename(".docx"); got != name {
			t.Fatalf("shift %d filename = %q, want %q", i+2, got, name)
		}
		if w.Start.Hour() != 0 || w.Start.Minute() != 0 {
			t.Fatalf("shift %d starts at %s, want 00:00", i+2, w.Start.Format("15:04 MST"))
		}
	}

	// Spring forward: 31.03.2024 is 23 hours long.
	spring := NewWindow(time.Date(2024, 3, 31, 8, 0, 0, 0, berlin))
	if got := spring.End.Sub(spring.Start); got != 23*time.Hour {
		t.Fatalf("spring-forward shift length = %s, want 23h", got)
	}
	if spring.End.Hour() != 8 || spring.EndDay() != "01.04.2024" {
		t.Fatalf("spring-forward end = %s", spring.End)
	}
}

func TestBuildObjectsNumbersInInputOrder(t *testing.T) {
	names := []string{"Warehouse", "Gate", "Boiler room"}
	window := NewWindow(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	records := BuildObjects(names, window, newTestGenerator(t, 7))
	if len(records) != len(names) {
		t.Fatalf("records = %d, want %d", len(records), len(names))
	}
	for i, rec := range records {
		if rec.Num != i+1 {
			t.Fatalf("records[%d].Num = %d, want %d", i, rec.Num, i+1)
		}
		if rec.Name != names[i] {
			t.Fatalf("records[%d].Name = %q, want %q", i, rec.Name, names[i])
		}
		if len(rec.Crawls) == 0 || len(rec.Crawls) != len(rec.Times) {
			t.Fatalf("records[%d] crawls = %d, times = %d", i, len(rec.Crawls), len(rec.Times))
		}
	}
}

func TestBuildObjectsSchedulesAreIndependent(t *testing.T) {
	window := NewWindow(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	records := BuildObjects([]string{"A", "B", "C", "D"}, window, newTestGenerator(t, 3))

	identical := 0
	for i := 1; i < len(records); i++ {
		if equalStrings(records[0].Crawls, records[i].Crawls) {
			identical++
		}
	}
	if identical == len(records)-1 {
		t.Fatal("every object received the same schedule")
	}
}

func TestEndToEndSingleShift(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	window := NewWindow(start)

	sc := BuildContext(BuildObjects([]string{"A", "B"}, window, newTestGenerator(t, 99)), window)
	if sc.StartDay != "01.01.2024" {
		t.Fatalf("StartDay = %q", sc.StartDay)
	}
	if sc.EndDay != "02.01.2024" {
		t.Fatalf("EndDay = %q", sc.EndDay)
	}
	if len(sc.Objects) != 2 || sc.Objects[0].Name != "A" || sc.Objects[1].Name != "B" {
		t.Fatalf("objects = %+v", sc.Objects)
	}

	lower := time.Date(2024, 1, 1, 8, 10, 0, 0, time.UTC)
	upper := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	for _, obj := range sc.Objects {
		if len(obj.Crawls) == 0 {
			t.Fatalf("object %s has no crawls", obj.Name)
		}
		var prev time.Time
		for i, formatted := range obj.Crawls {
			at, err := crawl.ParseCrawl(formatted, time.UTC)
			if err != nil {
				t.Fatalf("object %s crawl %q: %v", obj.Name, formatted, err)
			}
			if at.Before(lower) || !at.Before(upper) {
				t.Fatalf("object %s crawl %s outside [08:10, next day 08:00)", obj.Name, formatted)
			}
			if i > 0 && !at.After(prev) {
				t.Fatalf("object %s crawls not strictly increasing at %d", obj.Name, i)
			}
			prev = at
		}
	}
}

func TestBuildContextEmptyObjects(t *testing.T) {
	window := NewWindow(time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC))
	sc := BuildContext(BuildObjects(nil, window, newTestGenerator(t, 1)), window)

	if sc.Objects == nil || len(sc.Objects) != 0 {
		t.Fatalf("objects = %#v, want empty slice", sc.Objects)
	}
	if sc.EndDay != "01.06.2024" {
		t.Fatalf("EndDay = %q, want 01.06.2024", sc.EndDay)
	}
	data := sc.TemplateData()
	objects, ok := data["objects"].([]map[string]any)
	if !ok || len(objects) != 0 {
		t.Fatalf("template objects = %#v", data["objects"])
	}
}

func TestTemplateDataKeys(t *testing.T) {
	window := NewWindow(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	sc := BuildContext([]ObjectRecord{{Num: 1, Name: "A", Crawls: []string{"08:10 01.01.2024"}}}, window)

	data := sc.TemplateData()
	if data["shift_start_day"] != "01.01.2024" || data["shift_end_day"] != "02.01.2024" {
		t.Fatalf("days = %v / %v", data["shift_start_day"], data["shift_end_day"])
	}
	objects := data["objects"].([]map[string]any)
	if objects[0]["num"] != 1 || objects[0]["name"] != "A" {
		t.Fatalf("object = %#v", objects[0])
	}
	crawls := objects[0]["crawls"].([]string)
	if len(crawls) != 1 || crawls[0] != "08:10 01.01.2024" {
		t.Fatalf("crawls = %#v", crawls)
	}
	if sc.CrawlCount() != 1 {
		t.Fatalf("CrawlCount = %d, want 1", sc.CrawlCount())
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
