/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package crawl

import "time"

// Display layouts used on printed schedules.
const (
	CrawlLayout   = "15:04 02.01.2006"
	DayLayout     = "02.01.2006"
	FileDayLayout = "02012006"
)

// FormatCrawl renders a crawl time as HH:MM DD.MM.YYYY.
func FormatCrawl(t time.Time) string {
	return t.Format(CrawlLayout)
}

// FormatCrawls formats each crawl in order.
func FormatCrawls(crawls []time.Time) []string {
	formatted := make([]string, 0, len(crawls))
	for _, crawl := range crawls {
		formatted = append(formatted, FormatCrawl(crawl))
	}
	return formatted
}

// ParseCrawl parses a value produced by FormatCrawl in loc.
func ParseCrawl(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(CrawlLayout, s, loc)
}
