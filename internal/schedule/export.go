/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// ExportResult contains exported document data.
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ExportToICal exports a shift as an iCalendar feed with one event per crawl.
func ExportToICal(sc *ShiftContext, stamp time.Time) *ExportResult {
	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//Friends Incode//shiftsheet//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICalText("Crawls "+sc.StartDay+" - "+sc.EndDay)))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	base := sc.Window.Filename("")
	for _, obj := range sc.Objects {
		for i, at := range obj.Times {
			buf.WriteString("BEGIN:VEVENT\r\n")
			buf.WriteString(fmt.Sprintf("UID:%s-%d-%d@shiftsheet\r\n", base, obj.Num, i+1))
			buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICalTime(stamp)))
			buf.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICalTime(at)))
			buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(fmt.Sprintf("Crawl %d: %s", obj.Num, obj.Name))))
			buf.WriteString("END:VEVENT\r\n")
		}
	}

	buf.WriteString("END:VCALENDAR\r\n")

	return &ExportResult{
		Data:        buf.Bytes(),
		Filename:    sc.Window.Filename(".ics"),
		ContentType: "text/calendar; charset=utf-8",
	}
}

var printableTemplate = template.Must(template.New("shift").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Crawl schedule {{.StartDay}} - {{.EndDay}}</title>
    <style>
        @page { margin: 1cm; }
        body { font-family: Arial, sans-serif; font-size: 11pt; line-height: 1.4; }
        h1 { font-size: 18pt; margin-bottom: 5mm; border-bottom: 2px solid #333; padding-bottom: 3mm; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 2mm 3mm; text-align: left; border-bottom: 1px solid #ddd; vertical-align: top; }
        th { background: #f5f5f5; font-weight: bold; }
        .num { width: 5%; }
        .name { width: 35%; }
        .footer { margin-top: 10mm; font-size: 9pt; color: #666; text-align: center; }
    </style>
</head>
<body>
    <h1>Crawl schedule {{.StartDay}} - {{.EndDay}}</h1>
    <table>
        <tr><th class="num">#</th><th class="name">Object</th><th>Crawls</th></tr>
{{- range .Objects}}
        <tr>
            <td class="num">{{.Num}}</td>
            <td class="name">{{.Name}}</td>
            <td>{{range $i, $c := .Crawls}}{{if $i}}<br>{{end}}{{$c}}{{end}}</td>
        </tr>
{{- end}}
    </table>
    <div class="footer">Generated by shiftsheet on {{.Generated}}</div>
</body>
</html>
`))

// ExportToHTML renders a shift as a printable HTML page.
func ExportToHTML(sc *ShiftContext, generated time.Time) (*ExportResult, error) {
	var buf bytes.Buffer
	err := printableTemplate.Execute(&buf, struct {
		*ShiftContext
		Generated string
	}{sc, generated.Format("02.01.2006 15:04")})
	if err != nil {
		return nil, fmt.Errorf("render printable schedule: %w", err)
	}

	return &ExportResult{
		Data:        buf.Bytes(),
		Filename:    sc.Window.Filename(".html"),
		ContentType: "text/html; charset=utf-8",
	}, nil
}

// Helper functions

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
