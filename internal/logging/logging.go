// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info and report ok == false.
func ParseLevel(name string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel, true
	case "info", "":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off":
		return zerolog.Disabled, true
	}
	return zerolog.InfoLevel, false
}

// Setup points the global logger at path as JSON lines, or at stderr in
// console format when path is empty. The returned closer releases the
// log file.
func Setup(level, path string) (io.Closer, error) {
	lvl, ok := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	var closer io.Closer = nopCloser{}
	if path == "" {
		log.Logger = console(os.Stderr)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		zerolog.TimeFieldFormat = time.RFC3339
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
		closer = f
	}

	if !ok {
		log.Warn().Msgf("Unknown log level '%s', defaulting to info.", level)
	}
	return closer, nil
}

// SetupConsole points the global logger at w in console format. CLI
// subcommands log this way.
func SetupConsole(level string, w io.Writer) {
	lvl, ok := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	log.Logger = console(w)
	if !ok {
		log.Warn().Msgf("Unknown log level '%s', defaulting to info.", level)
	}
}

func console(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
