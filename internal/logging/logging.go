// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel accepts slog level names plus WARNING and CRITICAL.
func ParseLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	switch strings.ToUpper(value) {
	case "WARNING":
		value = "warn"
	case "CRITICAL":
		value = "error"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

// Configure installs a text logger on stderr as the default. Debug forces the
// debug level and adds source locations.
func Configure(rawLevel string, debug bool) error {
	level, err := ParseLevel(rawLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(New(os.Stderr, level, debug))
	return nil
}

func New(w io.Writer, level slog.Level, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
