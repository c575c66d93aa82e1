package downloader

import (
	"errors"
	"fmt"
	"os"
)

// ErrSizeMismatch indicates the saved file differs from the recorded size
var ErrSizeMismatch = errors.New("file size mismatch")

// VerifySize checks a file against the size the server recorded.
// A non-positive expected size skips the check.
func VerifySize(path string, expected int64) error {
	if expected <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() != expected {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrSizeMismatch, expected, info.Size())
	}
	return nil
}
