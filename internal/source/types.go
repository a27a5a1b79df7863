package source

import "os"

// FileFlags encodes metadata about a source file.
type FileFlags uint8 // метаданные

const (
	// FileVirtual indicates the file was built from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // не с диска
	FileHadBOM
	FileNormalizedCRLF
	// FileTrailingNewline is set when the content ends with '\n'.
	FileTrailingNewline
)

// File captures metadata and content for a single source file.
type File struct {
	Path    string
	Content []byte // normalized: no BOM, LF line endings
	LineIdx []uint32
	Hash    [32]byte // sha256 of the bytes as they were on disk
	Flags   FileFlags
	Mode    os.FileMode
}
