// fsutil/directory.go
package fsutil

import (
	"fmt"
	"os"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/spf13/afero"
)

// DirExists checks if a directory exists
func DirExists(fsys afero.Fs, path string) bool {
	ok, err := afero.DirExists(fsys, path)
	return err == nil && ok
}

// CreateDir creates a directory and its parents if it doesn't exist
func CreateDir(fsys afero.Fs, path string, perm os.FileMode) error {
	if DirExists(fsys, path) {
		return nil
	}
	if FileExists(fsys, path) {
		return &apperrors.Error{
			Kind:   apperrors.KindAlreadyExists,
			Name:   path,
			Reason: "a file is in the way of the output directory",
		}
	}
	if err := fsys.MkdirAll(path, perm); err != nil {
		return apperrors.FromIO(fmt.Errorf("failed to create directory: %w", err))
	}
	return nil
}

// CreateDirIfNotExists creates a directory with standard permissions if it doesn't exist
func CreateDirIfNotExists(fsys afero.Fs, path string) error {
	return CreateDir(fsys, path, 0755)
}
