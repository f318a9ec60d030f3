package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation   = "operation"
	KeyUser        = "user"
	KeyFolder      = "folder"
	KeyDestination = "destination"
	KeyCommand     = "command"
	KeyDuration    = "duration"
	KeyStatus      = "status"
	KeyError       = "error"
)

// LevelForVerbosity maps the number of -v flags to a slog level.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New returns a text logger writing to w at the level selected by verbosity.
func New(w io.Writer, verbosity int) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelForVerbosity(verbosity),
	}))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// User returns a slog attribute for a mail user.
func User(user string) slog.Attr {
	return slog.String(KeyUser, user)
}

// Folder returns a slog attribute for a source folder.
func Folder(folder string) slog.Attr {
	return slog.String(KeyFolder, folder)
}

// Destination returns a slog attribute for a destination folder.
func Destination(folder string) slog.Attr {
	return slog.String(KeyDestination, folder)
}

// Command returns a slog attribute holding a command line.
func Command(argv []string) slog.Attr {
	return slog.String(KeyCommand, strings.Join(argv, " "))
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}
