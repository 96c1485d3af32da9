/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package docx renders Word documents from .docx templates.
//
// Template parts (the document body, headers and footers) use Go
// text/template syntax. Placeholders that Word split across several runs are
// joined back together before parsing, and the tr, tc and p prefixes replace
// the enclosing table row, table cell or paragraph with the action, so
//
//	{{tr range .objects}}
//	...one row per object...
//	{{tr end}}
//
// repeats a table row. String values are XML-escaped before substitution.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

const mainPart = "word/document.xml"

// ErrNotDocument is returned when the archive has no document body.
var ErrNotDocument = errors.New("not a word document")

var templatePartPattern = regexp.MustCompile(`^word/(document|header[0-9]*|footer[0-9]*)\.xml$`)

// lineBreak closes the current text element, emits a break and reopens text.
const lineBreak = `</w:t><w:br/><w:t xml:space="preserve">`

type part struct {
	file *zip.File
	tmpl *template.Template
}

// Template is a parsed .docx template. It is safe to render repeatedly.
type Template struct {
	name  string
	parts []part
}

// Open reads and parses the template at path.
func Open(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse parses a .docx archive held in memory.
func Parse(name string, data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	t := &Template{name: name}
	hasBody := false
	for _, f := range zr.File {
		p := part{file: f}
		if templatePartPattern.MatchString(f.Name) {
			src, err := readFile(f)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			normalized, err := Normalize(string(src))
			if err != nil {
				return nil, fmt.Errorf("prepare %s: %w", f.Name, err)
			}
			p.tmpl, err = template.New(f.Name).
				Option("missingkey=error").
				Funcs(funcs).
				Parse(normalized)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", f.Name, err)
			}
			if f.Name == mainPart {
				hasBody = true
			}
		}
		t.parts = append(t.parts, p)
	}
	if !hasBody {
		return nil, fmt.Errorf("%s: %w", name, ErrNotDocument)
	}
	return t, nil
}

// Name returns the template file name.
func (t *Template) Name() string {
	return t.name
}

// Render executes the template against data and returns the new .docx archive.
func (t *Template) Render(data any) ([]byte, error) {
	escaped := escapeData(data)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range t.parts {
		if p.tmpl == nil {
			if err := zw.Copy(p.file); err != nil {
				return nil, fmt.Errorf("copy %s: %w", p.file.Name, err)
			}
			continue
		}

		var out bytes.Buffer
		if err := p.tmpl.Execute(&out, escaped); err != nil {
			return nil, fmt.Errorf("render %s: %w", p.file.Name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.file.Name,
			Method:   zip.Deflate,
			Modified: p.file.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", p.file.Name, err)
		}
		if _, err := w.Write(out.Bytes()); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.file.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

var funcs = template.FuncMap{
	"join": func(items []string, sep string) string {
		return strings.Join(items, escapeText(sep))
	},
	"lines": func(items []string) string {
		return strings.Join(items, lineBreak)
	},
	"br": func() string {
		return lineBreak
	},
}

func escapeText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// escapeData copies data with every string XML-escaped.
func escapeData(v any) any {
	switch x := v.(type) {
	case string:
		return escapeText(x)
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = escapeText(s)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = escapeData(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, item := range x {
			out[i] = escapeData(item).(map[string]any)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = escapeData(item)
		}
		return out
	default:
		return v
	}
}
