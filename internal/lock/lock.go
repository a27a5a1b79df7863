// Package lock serialises repair runs on the same project root with an
// advisory file lock.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// ErrLocked is returned when another run holds the lock for the same root.
var ErrLocked = errors.New("another mend run holds the lock for this root")

// DefaultDir returns the directory holding lock files.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "mend", "locks"), nil
}

// FileFor returns the lock file path for root inside dir.
func FileFor(dir, root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for root under dir without blocking. The returned
// release function must be called when the run ends.
func Acquire(dir, root string) (release func(), err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return acquire(FileFor(dir, root))
}
