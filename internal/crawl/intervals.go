/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package crawl generates randomized crawl (patrol visit) times for a shift.
package crawl

import (
	"errors"
	"fmt"
	"time"
)

// Default interval bounds between two consecutive crawls of the same object.
const (
	DefaultIntervalMin  = 90 * time.Minute
	DefaultIntervalMax  = 120 * time.Minute
	DefaultIntervalStep = 5 * time.Minute
)

// ErrInvalidIntervals is returned when an interval set cannot guarantee progress.
var ErrInvalidIntervals = errors.New("invalid interval set")

// Intervals returns every duration from min to max inclusive, stepping by step.
func Intervals(min, max, step time.Duration) ([]time.Duration, error) {
	if min <= 0 || step <= 0 {
		return nil, fmt.Errorf("%w: min %s and step %s must be positive", ErrInvalidIntervals, min, step)
	}
	if max < min {
		return nil, fmt.Errorf("%w: max %s is below min %s", ErrInvalidIntervals, max, min)
	}

	intervals := make([]time.Duration, 0, int((max-min)/step)+1)
	for interval := min; interval <= max; interval += step {
		intervals = append(intervals, interval)
	}
	return intervals, nil
}

// DefaultIntervals returns the 90..120 minute set in 5 minute steps.
func DefaultIntervals() []time.Duration {
	intervals, _ := Intervals(DefaultIntervalMin, DefaultIntervalMax, DefaultIntervalStep)
	return intervals
}
