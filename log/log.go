// Package log holds the process-wide loggers. The TUI owns stdout, so every
// line goes to a file under the temp dir instead, teed through the sentry
// writer.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aerogrid/netmap/internal/sentry"
	charmlog "github.com/charmbracelet/log"
)

// FileName is the log file created under os.TempDir.
const FileName = "netmap.log"

var (
	InfoLog    = newLogger(io.Discard, "INFO", charmlog.InfoLevel)
	WarningLog = newLogger(io.Discard, "WARN", charmlog.InfoLevel)
	ErrorLog   = newLogger(io.Discard, "ERROR", charmlog.InfoLevel)
	// DebugLog only writes after Initialize(true).
	DebugLog = newLogger(io.Discard, "DEBUG", charmlog.DebugLevel)
)

var logFile *os.File

// Path returns where Initialize writes.
func Path() string {
	return filepath.Join(os.TempDir(), FileName)
}

// newLogger creates a timestamped logger, "HH:MM:SS.ms" like 14:32:01.45.
func newLogger(w io.Writer, prefix string, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Prefix:          prefix,
		Level:           level,
	})
}

// Initialize opens the log file and points the loggers at it. It is safe to
// call more than once; the previous file is closed first.
func Initialize(verbose bool) {
	Close()

	f, err := os.OpenFile(Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open log file: %s\n", err)
		return
	}
	logFile = f

	InfoLog = newLogger(sentry.NewWriter(f, sentry.LevelInfo), "INFO", charmlog.InfoLevel)
	WarningLog = newLogger(sentry.NewWriter(f, sentry.LevelWarning), "WARN", charmlog.InfoLevel)
	ErrorLog = newLogger(sentry.NewWriter(f, sentry.LevelError), "ERROR", charmlog.InfoLevel)
	if verbose {
		DebugLog = newLogger(sentry.NewWriter(f, sentry.LevelDebug), "DEBUG", charmlog.DebugLevel)
	} else {
		DebugLog = newLogger(io.Discard, "DEBUG", charmlog.DebugLevel)
	}
}

// Close closes the log file and resets the loggers to discard.
func Close() {
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
	InfoLog = newLogger(io.Discard, "INFO", charmlog.InfoLevel)
	WarningLog = newLogger(io.Discard, "WARN", charmlog.InfoLevel)
	ErrorLog = newLogger(io.Discard, "ERROR", charmlog.InfoLevel)
	DebugLog = newLogger(io.Discard, "DEBUG", charmlog.DebugLevel)
}
