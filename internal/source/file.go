package source

import (
	"crypto/sha256"
	"os"
	"strings"
)

// Load reads a file from disk, normalizes CRLF/BOM and builds the line index.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	f := FromBytes(path, raw)
	f.Flags &^= FileVirtual
	f.Mode = mode
	return f, nil
}

// FromBytes builds a virtual File from raw bytes. Hash covers raw, so a
// file loaded later from the same bytes compares equal.
func FromBytes(path string, raw []byte) *File {
	hash := sha256.Sum256(raw)
	content, hadBOM := removeBOM(raw)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileVirtual
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	if len(content) > 0 && content[len(content)-1] == '\n' {
		flags |= FileTrailingNewline
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    hash,
		Flags:   flags,
		Mode:    0o644,
	}
}

// Lines splits the normalized content into lines without terminators.
// A trailing newline does not produce an extra empty line.
func (f *File) Lines() []string {
	if len(f.Content) == 0 {
		return []string{}
	}
	text := string(f.Content)
	if f.Flags&FileTrailingNewline != 0 {
		text = text[:len(text)-1]
	}
	return strings.Split(text, "\n")
}

// LineCount returns the number of lines as reported by Lines.
func (f *File) LineCount() int {
	if len(f.Content) == 0 {
		return 0
	}
	n := len(f.LineIdx)
	if f.Flags&FileTrailingNewline == 0 {
		n++
	}
	return n
}

// Line returns 1-based line n without its terminator, false past the end.
func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > f.LineCount() {
		return "", false
	}
	start := 0
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if n-1 < len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	return string(f.Content[start:end]), true
}

// Encode joins lines back into bytes using the file's original conventions:
// BOM, CRLF line endings and the presence of a final newline are restored.
func (f *File) Encode(lines []string) []byte {
	text := strings.Join(lines, "\n")
	if f.Flags&FileTrailingNewline != 0 && len(lines) > 0 {
		text += "\n"
	}
	out := []byte(text)
	if f.Flags&FileNormalizedCRLF != 0 {
		out = restoreCRLF(out)
	}
	if f.Flags&FileHadBOM != 0 {
		out = append([]byte{0xEF, 0xBB, 0xBF}, out...)
	}
	return out
}
