/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package storage persists generated documents.
package storage

import (
	"context"
	"path"
	"strings"
)

// ObjectStore abstracts where rendered documents are written.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// CheckAccess verifies the destination exists before any document is rendered.
	CheckAccess(ctx context.Context) error
	// URL returns a human-readable location for key.
	URL(key string) string
}

var contentTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ics":  "text/calendar; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".json": "application/json",
}

// ContentType returns the MIME type for a document key.
func ContentType(key string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}
