package sentry

import (
	"io"
	"strings"

	gosentry "github.com/getsentry/sentry-go"
)

// Level represents the severity level for the sentry writer.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// levelPrefixes are the log.Logger prefixes written by package log. They are
// stripped so Sentry groups events by message rather than by prefix.
var levelPrefixes = []string{"[POPOUT] ", "INFO:", "WARNING:", "ERROR:"}

// Writer wraps an io.Writer and forwards log lines to Sentry.
// Errors become Sentry events; warnings and info become breadcrumbs.
type Writer struct {
	inner io.Writer
	level Level
}

// NewWriter creates a Writer that tees to inner and forwards to Sentry.
func NewWriter(inner io.Writer, level Level) *Writer {
	return &Writer{inner: inner, level: level}
}

func (w *Writer) Write(p []byte) (int, error) {
	// The log file always gets the line, whether or not sentry is up.
	n, err := w.inner.Write(p)

	if !enabled {
		return n, err
	}

	msg := trimLevelPrefix(strings.TrimSpace(string(p)))
	if msg == "" {
		return n, err
	}

	switch w.level {
	case LevelError:
		gosentry.CaptureMessage(msg)
	case LevelWarning:
		gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
			Level:    gosentry.LevelWarning,
			Category: "glrhs.log",
			Message:  msg,
		})
	case LevelInfo:
		gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
			Level:    gosentry.LevelInfo,
			Category: "glrhs.log",
			Message:  msg,
		})
	}

	return n, err
}

func trimLevelPrefix(msg string) string {
	for _, p := range levelPrefixes {
		msg = strings.TrimPrefix(msg, p)
	}
	return strings.TrimSpace(msg)
}
