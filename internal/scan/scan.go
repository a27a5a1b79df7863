// Package scan reports delimiter imbalance across a source tree without
// running the checker or touching any file.
package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mend/internal/delim"
	"mend/internal/source"
)

// Options selects the files of a scan.
type Options struct {
	Extensions []string // ".rs"; every file when empty
	Exclude    []string // directory names or root-relative paths to skip
	Jobs       int      // GOMAXPROCS when <= 0
}

// Position is a delimiter occurrence, 1-based.
type Position struct {
	Char string `json:"char"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// Finding describes one file that is not balanced or could not be read.
type Finding struct {
	Path      string     `json:"path"`
	Imbalance int        `json:"imbalance"`
	Open      []Position `json:"open,omitempty"`
	Stray     []Position `json:"stray,omitempty"`
	// Unterminated is set when the file ends inside a string or comment.
	Unterminated bool   `json:"unterminated,omitempty"`
	Err          string `json:"error,omitempty"`
}

// Result is the outcome of Tree.
type Result struct {
	Root     string    `json:"root"`
	Files    int       `json:"files"`
	Findings []Finding `json:"findings"`
}

// Clean reports whether no file was imbalanced or unreadable.
func (r *Result) Clean() bool {
	return len(r.Findings) == 0
}

// ListFiles returns the sorted files under root matching opts.
func ListFiles(root string, opts Options) ([]string, error) {
	skip := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		skip[filepath.ToSlash(filepath.Clean(e))] = true
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if skip[d.Name()] || (relErr == nil && skip[filepath.ToSlash(rel)]) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchExt(path, opts.Extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

func matchExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Tree scans every matching file under root in parallel.
func Tree(ctx context.Context, root string, opts Options) (*Result, error) {
	files, err := ListFiles(root, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Root: root, Files: len(files), Findings: []Finding{}}
	if len(files) == 0 {
		return res, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	found := make([]*Finding, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			found[i] = scanFile(root, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range found {
		if f != nil {
			res.Findings = append(res.Findings, *f)
		}
	}
	return res, nil
}

// scanFile returns nil for a balanced file.
func scanFile(root, path string) *Finding {
	rel, err := source.RelativePath(path, root)
	if err != nil {
		rel = path
	}
	f, err := source.Load(path)
	if err != nil {
		return &Finding{Path: rel, Err: err.Error()}
	}
	r := delim.Scan(f.Lines())
	if r.Imbalance() == 0 && len(r.Open) == 0 && r.EndMode == delim.ModeCode {
		return nil
	}
	return &Finding{
		Path:         rel,
		Imbalance:    r.Imbalance(),
		Open:         positions(r.Open),
		Stray:        positions(r.Stray),
		Unterminated: r.EndMode != delim.ModeCode,
	}
}

func positions(toks []delim.Token) []Position {
	if len(toks) == 0 {
		return nil
	}
	out := make([]Position, len(toks))
	for i, t := range toks {
		out[i] = Position{Char: string(rune(t.Ch)), Line: t.Line + 1, Col: t.Col + 1}
	}
	return out
}
