package util

import (
	"io"
	"log/slog"
)

// CloseFileFunc closes c from a defer, logging instead of dropping the error.
func CloseFileFunc(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("close failed", "err", err)
	}
}
