// Package logging builds the levelled loggers shared by every component.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is the prefix printed on every record.
const Prefix = "urlimport"

// New returns a logger writing to w at the named level ("debug", "info", "warn", "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           lvl,
		ReportTimestamp: lvl == log.DebugLevel,
	}), nil
}

// Nop returns a logger that discards everything.
func Nop() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrNop returns logger, or a discarding logger when logger is nil.
func OrNop(logger *log.Logger) *log.Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
