package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestListFilesHonoursExtensionsAndExclude(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/main.rs":         "fn main() {}\n",
		"src/notes.md":        "# notes\n",
		"target/debug/gen.rs": "fn x() {\n",
		"vendor/dep/lib.rs":   "fn y() {\n",
	})
	files, err := ListFiles(root, Options{Extensions: []string{".rs"}, Exclude: []string{"target", "vendor/dep"}})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "main.rs" {
		t.Fatalf("expected only src/main.rs, got %v", files)
	}
}

func TestTreeFindsImbalancedFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/a.rs": "fn a() {\n    let s = \"}\";\n}\n",
		"src/b.rs": "fn b() {\n    call(1,\n",
		"src/c.rs": "fn c() {}\n}\n",
		"src/d.rs": "fn d() {\n    /* open\n}\n",
	})
	res, err := Tree(context.Background(), root, Options{Extensions: []string{".rs"}, Jobs: 2})
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if res.Files != 4 {
		t.Fatalf("expected 4 files scanned, got %d", res.Files)
	}
	if len(res.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %+v", res.Findings)
	}

	b := res.Findings[0]
	if b.Path != "src/b.rs" || b.Imbalance != 2 || len(b.Open) != 2 {
		t.Fatalf("unexpected finding for b.rs: %+v", b)
	}
	if b.Open[0] != (Position{Char: "{", Line: 1, Col: 8}) {
		t.Fatalf("unexpected outer opener %+v", b.Open[0])
	}
	c := res.Findings[1]
	if c.Path != "src/c.rs" || len(c.Stray) != 1 || c.Stray[0].Line != 2 {
		t.Fatalf("unexpected finding for c.rs: %+v", c)
	}
	if d := res.Findings[2]; d.Path != "src/d.rs" || !d.Unterminated {
		t.Fatalf("expected d.rs to end inside a comment: %+v", d)
	}
}

func TestTreeEmptyIsClean(t *testing.T) {
	res, err := Tree(context.Background(), t.TempDir(), Options{Extensions: []string{".rs"}})
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if !res.Clean() || res.Files != 0 {
		t.Fatalf("expected clean empty result, got %+v", res)
	}
}

func TestTreeCanceled(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.rs": "fn a() {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Tree(ctx, root, Options{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
