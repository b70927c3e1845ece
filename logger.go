package recordrig

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output. The rig is silent
// when no logger is configured; use this where a non-nil logger is needed.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
