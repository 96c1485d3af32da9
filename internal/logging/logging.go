/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Logs go to stderr so stdout stays
// free for command output such as preview JSON.
func Setup(environment string) zerolog.Logger {
	return SetupWithWriter(environment, os.Stderr)
}

// SetupWithWriter configures zerolog with a console writer on out.
func SetupWithWriter(environment string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	consoleWriter := zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr}

	logger := zerolog.New(consoleWriter).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}

// ParseLevel overrides the level chosen by Setup, e.g. from --log-level.
func ParseLevel(logger zerolog.Logger, level string) (zerolog.Logger, error) {
	if level == "" {
		return logger, nil
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger, err
	}
	return logger.Level(parsed), nil
}
