package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Open returns a structured logger writing JSON records to the named file,
// plus a closer for the underlying handle. The TUI owns stdout and stderr, so
// everything diagnostic goes to the file. level: "debug", "info", "warn",
// "error" (default "info"). An unwritable path degrades to a discard logger
// rather than failing startup.
func Open(path, level string) (*slog.Logger, func() error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, opts)), func() error { return nil }
	}
	return slog.New(slog.NewJSONHandler(file, opts)), file.Close
}
