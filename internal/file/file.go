// Package file pairs a CLI-supplied path with the extension chain parsed from its name.
package file

import (
	"path/filepath"

	"github.com/deploymenttheory/go-crunch/internal/extension"
)

// File is a path plus its recognized extension chain. A nil Extension means
// none of the trailing tokens of the name are known formats.
type File struct {
	Path      string
	Extension extension.Extension
}

// New builds a File from a raw path
func New(path string) File {
	cleaned := filepath.Clean(path)
	return File{
		Path:      cleaned,
		Extension: extension.Parse(cleaned),
	}
}

// NewAll builds a File for every path, preserving order
func NewAll(paths []string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		files = append(files, New(p))
	}
	return files
}

// HasExtension reports whether a format chain was recognized
func (f File) HasExtension() bool {
	return len(f.Extension) > 0
}

// Name returns the base name of the path
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Dir returns the directory holding the file
func (f File) Dir() string {
	return filepath.Dir(f.Path)
}

// Stem returns the base name without the recognized extension tokens
func (f File) Stem() string {
	_, stem := extension.Split(f.Path)
	return stem
}

func (f File) String() string {
	return f.Path
}
