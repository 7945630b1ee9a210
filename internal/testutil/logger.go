package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops every record.
// Used wherever engine logging would clutter test output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
