// SPDX-License-Identifier: MPL-2.0

// Package logging installs the process-wide slog handler.
//
// Call sites use log/slog directly; the handler behind them is a
// charmbracelet/log logger writing human-readable lines to stderr.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Prefix is printed before every line.
	Prefix string
	// Timestamps enables a time column.
	Timestamps bool
}

// New builds a slog.Logger backed by charmbracelet/log.
func New(w io.Writer, opts Options) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          opts.Prefix,
		Level:           ParseLevel(opts.Level),
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler)
}

// Install builds a logger with New and makes it the slog default.
func Install(w io.Writer, opts Options) *slog.Logger {
	logger := New(w, opts)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
