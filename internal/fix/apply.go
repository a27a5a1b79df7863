package fix

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mend/internal/source"
)

// ErrStale is returned when the file no longer matches what the edit was computed against.
var ErrStale = errors.New("stale location")

// WriteError wraps a failure to persist a patched file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Apply re-reads path, checks that its hash still equals base, applies edit and
// writes the result atomically. It reports whether the content changed.
func Apply(path string, edit Edit, base [32]byte) (bool, error) {
	f, err := source.Load(path)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStale, err)
	}
	if f.Hash != base {
		return false, fmt.Errorf("%w: %s changed on disk", ErrStale, path)
	}
	lines, err := edit.ApplyTo(f.Lines())
	if err != nil {
		return false, err
	}
	data := f.Encode(lines)
	if sha256.Sum256(data) == f.Hash {
		return false, nil
	}
	if err := WriteFile(path, data, f.Mode); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFile replaces path with data via a temp file in the same directory,
// so readers see either the old or the new content and never a partial write.
func WriteFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".mend-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			// best effort; the temp name is unique
			_ = os.Remove(tmp) //nolint:errcheck
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close() //nolint:errcheck
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmp, mode); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	// Атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	committed = true
	return nil
}
