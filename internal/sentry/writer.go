package sentry

import (
	"io"
	"strings"

	gosentry "github.com/getsentry/sentry-go"
)

// Level represents the severity level for the sentry writer.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// breadcrumbLevel maps a writer level onto the sentry breadcrumb level.
func (l Level) breadcrumbLevel() gosentry.Level {
	switch l {
	case LevelDebug:
		return gosentry.LevelDebug
	case LevelWarning:
		return gosentry.LevelWarning
	case LevelError:
		return gosentry.LevelError
	default:
		return gosentry.LevelInfo
	}
}

// Writer wraps an io.Writer and forwards log lines to Sentry.
// Errors become Sentry events; everything else becomes a breadcrumb so it
// shows up as the trail leading to the next captured error.
type Writer struct {
	inner    io.Writer
	level    Level
	category string
}

// NewWriter creates a Writer that tees to inner and forwards to Sentry.
func NewWriter(inner io.Writer, level Level) *Writer {
	return &Writer{inner: inner, level: level, category: "log"}
}

// WithCategory sets the breadcrumb category, e.g. "scenario" or "focus".
func (w *Writer) WithCategory(category string) *Writer {
	w.category = category
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	// Always write to the original destination first.
	n, err := w.inner.Write(p)

	if !enabled {
		return n, err
	}

	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return n, err
	}

	if w.level == LevelError {
		gosentry.CaptureMessage(msg)
		return n, err
	}
	gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
		Level:    w.level.breadcrumbLevel(),
		Category: w.category,
		Message:  msg,
	})
	return n, err
}
