/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package crawl

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultFirstCrawlOffset is the delay between shift start and the first crawl.
const DefaultFirstCrawlOffset = 10 * time.Minute

// Generator produces crawl schedules by a bounded random walk over intervals.
type Generator struct {
	intervals []time.Duration
	offset    time.Duration
	rng       *rand.Rand
}

// Option customizes a Generator.
type Option func(*Generator)

// WithFirstCrawlOffset overrides the delay before the first crawl.
func WithFirstCrawlOffset(offset time.Duration) Option {
	return func(g *Generator) {
		g.offset = offset
	}
}

// NewGenerator creates a generator drawing intervals from rng.
// A nil rng is replaced by a time-seeded source.
func NewGenerator(intervals []time.Duration, rng *rand.Rand, opts ...Option) (*Generator, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: no intervals", ErrInvalidIntervals)
	}
	for _, interval := range intervals {
		if interval <= 0 {
			return nil, fmt.Errorf("%w: interval %s is not positive", ErrInvalidIntervals, interval)
		}
	}
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}

	g := &Generator{
		intervals: append([]time.Duration(nil), intervals...),
		offset:    DefaultFirstCrawlOffset,
		rng:       rng,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.offset < 0 {
		return nil, fmt.Errorf("first crawl offset %s is negative", g.offset)
	}
	return g, nil
}

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate returns crawl times in [start+offset, end), strictly increasing.
func (g *Generator) Generate(start, end time.Time) []time.Time {
	var crawls []time.Time
	for current := start.Add(g.offset); current.Before(end); current = current.Add(g.pick()) {
		crawls = append(crawls, current)
	}
	return crawls
}

func (g *Generator) pick() time.Duration {
	return g.intervals[g.rng.IntN(len(g.intervals))]
}
