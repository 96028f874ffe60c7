package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output. Components under
// test take a logger; this keeps their noise out of test output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
