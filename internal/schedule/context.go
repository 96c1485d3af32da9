/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"time"

	"github.com/friendsincode/shiftsheet/internal/crawl"
)

// Generator produces crawl times inside a window.
type Generator interface {
	Generate(start, end time.Time) []time.Time
}

// ObjectRecord is the schedule of one object within a shift.
type ObjectRecord struct {
	Num    int         `json:"num"`
	Name   string      `json:"name"`
	Crawls []string    `json:"crawls"`
	Times  []time.Time `json:"-"`
}

// ShiftContext is everything a document template needs for one shift.
type ShiftContext struct {
	Window   Window         `json:"-"`
	StartDay string         `json:"shift_start_day"`
	EndDay   string         `json:"shift_end_day"`
	Objects  []ObjectRecord `json:"objects"`
}

// BuildObjects generates an independent schedule for every name, numbered from 1.
func BuildObjects(names []string, window Window, gen Generator) []ObjectRecord {
	records := make([]ObjectRecord, 0, len(names))
	for i, name := range names {
		times := gen.Generate(window.Start, window.End)
		records = append(records, ObjectRecord{
			Num:    i + 1,
			Name:   name,
			Crawls: crawl.FormatCrawls(times),
			Times:  times,
		})
	}
	return records
}

// BuildContext wraps records with the shift's boundary days.
func BuildContext(records []ObjectRecord, window Window) *ShiftContext {
	if records == nil {
		records = []ObjectRecord{}
	}
	return &ShiftContext{
		Window:   window,
		StartDay: window.StartDay(),
		EndDay:   window.EndDay(),
		Objects:  records,
	}
}

// CrawlCount returns the number of crawls across all objects.
func (c *ShiftContext) CrawlCount() int {
	total := 0
	for _, obj := range c.Objects {
		total += len(obj.Crawls)
	}
	return total
}

// TemplateData returns the substitution mapping used by document templates.
//
// Keys: shift_start_day, shift_end_day and objects, where each object has
// num, name and crawls.
func (c *ShiftContext) TemplateData() map[string]any {
	objects := make([]map[string]any, 0, len(c.Objects))
	for _, obj := range c.Objects {
		crawls := append([]string{}, obj.Crawls...)
		objects = append(objects, map[string]any{
			"num":    obj.Num,
			"name":   obj.Name,
			"crawls": crawls,
		})
	}
	return map[string]any{
		"shift_start_day": c.StartDay,
		"shift_end_day":   c.EndDay,
		"objects":         objects,
	}
}
