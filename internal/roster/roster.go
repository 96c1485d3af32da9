/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package roster reads the list of objects that need crawl schedules.
package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPath is the object list read when no path is configured.
const DefaultPath = "objects.txt"

// Roster is an ordered list of object names.
type Roster struct {
	Names []string
	// Skipped counts blank lines that were dropped.
	Skipped int
}

// Load reads a newline-delimited object list from path.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object list: %w", err)
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read object list %s: %w", path, err)
	}
	return r, nil
}

// Parse reads one object name per line. Names are whitespace-trimmed and
// blank lines are skipped.
func Parse(r io.Reader) (*Roster, error) {
	roster := &Roster{Names: []string{}}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if name == "" {
			roster.Skipped++
			continue
		}
		roster.Names = append(roster.Names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return roster, nil
}
