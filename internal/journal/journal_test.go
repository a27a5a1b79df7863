package journal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRecordAndRestore(t *testing.T) {
	cache := t.TempDir()
	root := t.TempDir()
	path := filepath.Join(root, "lib.rs")
	if err := os.WriteFile(path, []byte("fn a() {\n"), 0o640); err != nil {
		t.Fatal(err)
	}

	j, err := Begin(cache, root)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := j.Record(path); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := os.WriteFile(path, []byte("fn a() {\n}\n"), 0o640); err != nil {
		t.Fatal(err)
	}
	// a second record in the same run keeps the first content
	if err := j.Record(path); err != nil {
		t.Fatalf("Record: %v", err)
	}

	loaded, err := Load(cache, root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Entries()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(loaded.Entries()))
	}
	restored, err := loaded.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored) != 1 || restored[0] != path {
		t.Fatalf("expected %s restored, got %v", path, restored)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fn a() {\n" {
		t.Fatalf("expected original content, got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("expected mode 0640, got %v", info.Mode().Perm())
	}
	if _, err := Load(cache, root); !errors.Is(err, ErrNoJournal) {
		t.Fatalf("expected journal removed after restore, got %v", err)
	}
}

func TestBeginReplacesPreviousJournal(t *testing.T) {
	cache := t.TempDir()
	root := t.TempDir()
	path := filepath.Join(root, "a.rs")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	j, err := Begin(cache, root)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Record(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Begin(cache, root); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(cache, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Entries()) != 0 {
		t.Fatalf("expected empty journal, got %d entries", len(loaded.Entries()))
	}
}

func TestNilJournalRecordIsNoop(t *testing.T) {
	var j *Journal
	if err := j.Record("/nonexistent"); err != nil {
		t.Fatalf("expected nil journal to ignore records, got %v", err)
	}
}
