/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsincode/shiftsheet/internal/config"
	"github.com/friendsincode/shiftsheet/internal/docx"
	"github.com/friendsincode/shiftsheet/internal/schedule"
)

// Renderer turns one shift into a document.
type Renderer interface {
	Render(ctx context.Context, sc *schedule.ShiftContext) ([]byte, error)
	// Extension is appended to the shift filename, including the dot.
	Extension() string
	Format() string
}

// NewRenderer returns the renderer for format. templatePath is only read for
// docx output.
func NewRenderer(format, templatePath string) (Renderer, error) {
	switch format {
	case config.FormatDocx:
		return NewDocxRenderer(templatePath)
	case config.FormatICal:
		return &ICalRenderer{Now: time.Now}, nil
	case config.FormatHTML:
		return &HTMLRenderer{Now: time.Now}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// DocxRenderer fills a Word template.
type DocxRenderer struct {
	tpl *docx.Template
}

// NewDocxRenderer loads the template once for all shifts.
func NewDocxRenderer(templatePath string) (*DocxRenderer, error) {
	tpl, err := docx.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return &DocxRenderer{tpl: tpl}, nil
}

func (r *DocxRenderer) Render(_ context.Context, sc *schedule.ShiftContext) ([]byte, error) {
	return r.tpl.Render(sc.TemplateData())
}

func (r *DocxRenderer) Extension() string { return ".docx" }
func (r *DocxRenderer) Format() string    { return config.FormatDocx }

// ICalRenderer writes one calendar event per crawl.
type ICalRenderer struct {
	Now func() time.Time
}

func (r *ICalRenderer) Render(_ context.Context, sc *schedule.ShiftContext) ([]byte, error) {
	return schedule.ExportToICal(sc, r.Now()).Data, nil
}

func (r *ICalRenderer) Extension() string { return ".ics" }
func (r *ICalRenderer) Format() string    { return config.FormatICal }

// HTMLRenderer writes a printable page.
type HTMLRenderer struct {
	Now func() time.Time
}

func (r *HTMLRenderer) Render(_ context.Context, sc *schedule.ShiftContext) ([]byte, error) {
	res, err := schedule.ExportToHTML(sc, r.Now())
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *HTMLRenderer) Extension() string { return ".html" }
func (r *HTMLRenderer) Format() string    { return config.FormatHTML }
