// Package journal keeps the pre-patch content of every file a repair run
// touches so the run can be undone.
package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mend/internal/fix"
)

const schemaVersion = 1

// ErrNoJournal is returned by Load when no journal exists for the root.
var ErrNoJournal = errors.New("no journal for this root")

// Entry is the original content of one file.
type Entry struct {
	Path    string      `msgpack:"path"`
	Content []byte      `msgpack:"content"`
	Mode    os.FileMode `msgpack:"mode"`
	Hash    [32]byte    `msgpack:"hash"`
}

// payload is the on-disk layout.
type payload struct {
	Version int       `msgpack:"v"`
	Root    string    `msgpack:"root"`
	Created time.Time `msgpack:"created"`
	Entries []Entry   `msgpack:"entries"`
}

// Journal records original file contents for one root.
type Journal struct {
	file string
	data payload
	seen map[string]bool
}

// DefaultDir returns $XDG_CACHE_HOME/mend/journal (or the platform cache dir).
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "mend", "journal"), nil
}

// FileFor returns the journal path for root inside dir.
func FileFor(dir, root string) string {
	sum := sha256.Sum256([]byte(absRoot(root)))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".mp")
}

func absRoot(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	return abs
}

// Begin starts a fresh journal for root, replacing any previous one.
func Begin(dir, root string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	j := &Journal{
		file: FileFor(dir, root),
		data: payload{Version: schemaVersion, Root: absRoot(root), Created: time.Now().UTC()},
		seen: make(map[string]bool),
	}
	if err := j.save(); err != nil {
		return nil, err
	}
	return j, nil
}

// Load reads the journal for root.
func Load(dir, root string) (*Journal, error) {
	file := FileFor(dir, root)
	// #nosec G304 -- path is derived from the cache dir
	raw, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoJournal
	}
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	j := &Journal{file: file, seen: make(map[string]bool)}
	if err := msgpack.NewDecoder(bytes.NewReader(raw)).Decode(&j.data); err != nil {
		return nil, fmt.Errorf("journal: decode %s: %w", file, err)
	}
	if j.data.Version != schemaVersion {
		return nil, fmt.Errorf("journal: unsupported version %d", j.data.Version)
	}
	for _, e := range j.data.Entries {
		j.seen[e.Path] = true
	}
	return j, nil
}

// Record stores the current content of path unless it is already journaled.
// Only the first content seen in a run is kept.
func (j *Journal) Record(path string) error {
	if j == nil || j.seen[path] {
		return nil
	}
	// #nosec G304 -- path comes from the checker's diagnostics under root
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	j.data.Entries = append(j.data.Entries, Entry{
		Path:    path,
		Content: raw,
		Mode:    mode,
		Hash:    sha256.Sum256(raw),
	})
	j.seen[path] = true
	return j.save()
}

// Entries returns the journaled files sorted by path.
func (j *Journal) Entries() []Entry {
	out := append([]Entry(nil), j.data.Entries...)
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out
}

// Root returns the absolute project root the journal belongs to.
func (j *Journal) Root() string {
	return j.data.Root
}

// Created returns when the run started.
func (j *Journal) Created() time.Time {
	return j.data.Created
}

// Restore writes every original content back and removes the journal.
// It returns the restored paths.
func (j *Journal) Restore() ([]string, error) {
	var restored []string
	for _, e := range j.Entries() {
		if err := fix.WriteFile(e.Path, e.Content, e.Mode); err != nil {
			return restored, err
		}
		restored = append(restored, e.Path)
	}
	return restored, j.Drop()
}

// Drop deletes the journal file.
func (j *Journal) Drop() error {
	if err := os.Remove(j.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

func (j *Journal) save() error {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&j.data); err != nil {
		return fmt.Errorf("journal: encode: %w", err)
	}
	return fix.WriteFile(j.file, buf.Bytes(), 0o600)
}
