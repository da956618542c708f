// fsutil/files.go
package fsutil

import (
	"os"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/spf13/afero"
)

const defaultFileMode = 0644

// FileExists checks if a path exists and is not a directory
func FileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Exists checks if anything exists at path
func Exists(fsys afero.Fs, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// CreateFile opens path for writing. Unless overwrite is set an existing file
// is reported as AlreadyExists instead of being truncated.
func CreateFile(fsys afero.Fs, path string, overwrite bool) (afero.File, error) {
	return CreateFileMode(fsys, path, defaultFileMode, overwrite)
}

// CreateFileMode is CreateFile with an explicit permission mode
func CreateFileMode(fsys afero.Fs, path string, mode os.FileMode, overwrite bool) (afero.File, error) {
	flags := os.O_RDWR | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		if Exists(fsys, path) {
			return nil, &apperrors.Error{Kind: apperrors.KindAlreadyExists, Name: path}
		}
		flags |= os.O_EXCL
	}

	if mode == 0 {
		mode = defaultFileMode
	}

	f, err := fsys.OpenFile(path, flags, mode.Perm())
	if err != nil {
		return nil, apperrors.FromIO(err)
	}
	return f, nil
}

// OpenFile opens path for reading, classifying failures
func OpenFile(fsys afero.Fs, path string) (afero.File, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, apperrors.FromIO(err)
	}
	return f, nil
}

// RemoveQuietly deletes a partially written file, ignoring failures
func RemoveQuietly(fsys afero.Fs, path string) {
	_ = fsys.Remove(path)
}
