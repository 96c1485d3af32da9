/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule assembles per-shift crawl schedules for template rendering.
package schedule

import (
	"time"

	"github.com/friendsincode/shiftsheet/internal/crawl"
)

// Window is one shift, Start inclusive and End exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the shift beginning at start and ending at the same wall
// clock time on the next calendar day. Across a DST change the shift is 23
// or 25 hours long.
func NewWindow(start time.Time) Window {
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Next returns the shift that follows w.
func (w Window) Next() Window {
	return NewWindow(w.End)
}

// StartDay formats the first day of the shift as DD.MM.YYYY.
func (w Window) StartDay() string {
	return w.Start.Format(crawl.DayLayout)
}

// EndDay formats the last day of the shift as DD.MM.YYYY.
func (w Window) EndDay() string {
	return w.End.Format(crawl.DayLayout)
}

// Filename returns DDMMYYYY-DDMMYYYY followed by ext.
func (w Window) Filename(ext string) string {
	return w.Start.Format(crawl.FileDayLayout) + "-" + w.End.Format(crawl.FileDayLayout) + ext
}
