package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging points the global zerolog logger at path, keeping a single
// rotated history file. An empty path logs to stderr. It returns the opened
// log file (nil for stderr) so callers can close it on shutdown, and a
// plain-text writer that turns each line into a log event.
func setupLogging(path, level string) (*os.File, io.Writer, error) {
	zerolog.SetGlobalLevel(parseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339

	if path == "" {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime, NoColor: true}
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return nil, log.Logger, nil
	}

	// Remove existing history to keep only one backup
	_ = os.Remove(path + ".1")

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, nil, fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	log.Logger = zerolog.New(f).With().Timestamp().Caller().Logger()
	return f, log.Logger, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
