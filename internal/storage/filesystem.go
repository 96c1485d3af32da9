/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FilesystemStore writes documents into an existing local directory.
type FilesystemStore struct {
	rootDir string
	logger  zerolog.Logger
}

// NewFilesystemStore creates a store rooted at rootDir. The directory is never created.
func NewFilesystemStore(rootDir string, logger zerolog.Logger) *FilesystemStore {
	return &FilesystemStore{
		rootDir: rootDir,
		logger:  logger.With().Str("component", "fs_store").Logger(),
	}
}

// Put writes data to rootDir/key, replacing any existing file.
func (fs *FilesystemStore) Put(ctx context.Context, key string, data []byte) error {
	fullPath := filepath.Join(fs.rootDir, filepath.FromSlash(key))
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	fs.logger.Debug().
		Str("path", fullPath).
		Int("bytes", len(data)).
		Msg("document written")
	return nil
}

// Get reads rootDir/key.
func (fs *FilesystemStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(fs.rootDir, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// URL returns the local path of key.
func (fs *FilesystemStore) URL(key string) string {
	return filepath.Join(fs.rootDir, filepath.FromSlash(key))
}

// CheckAccess verifies the output directory exists and is a directory.
func (fs *FilesystemStore) CheckAccess(ctx context.Context) error {
	info, err := os.Stat(fs.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", fs.rootDir)
		}
		return fmt.Errorf("cannot access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", fs.rootDir)
	}
	return nil
}
