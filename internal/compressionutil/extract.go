package compression

import (
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/spf13/afero"
)

// Extraction records what unpacking an archive wrote
type Extraction struct {
	// Paths lists every member target in archive order
	Paths []string
	// Created lists the files and directories that did not exist before,
	// parents first
	Created []string
	// Bytes counts the file content written
	Bytes int64
}

// Rollback removes everything the extraction created, children first
func (x *Extraction) Rollback(fsys afero.Fs) {
	for i := len(x.Created) - 1; i >= 0; i-- {
		fsutil.RemoveQuietly(fsys, x.Created[i])
	}
	x.Created = nil
}

// mkdirAll creates dir and its missing parents, recording each new directory
func (x *Extraction) mkdirAll(fsys afero.Fs, dir string) error {
	var missing []string
	for d := filepath.Clean(dir); !fsutil.Exists(fsys, d); d = filepath.Dir(d) {
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	if len(missing) == 0 {
		return fsutil.CreateDirIfNotExists(fsys, dir)
	}

	if err := fsutil.CreateDirIfNotExists(fsys, dir); err != nil {
		return err
	}
	for i := len(missing) - 1; i >= 0; i-- {
		x.Created = append(x.Created, missing[i])
	}
	return nil
}

// writeFile copies r into a new file at target. Read and write failures
// during the copy are classified by copyErr.
func (x *Extraction) writeFile(fsys afero.Fs, target string, mode os.FileMode, overwrite bool, r io.Reader, copyErr func(error) error) error {
	if err := x.mkdirAll(fsys, filepath.Dir(target)); err != nil {
		return err
	}

	existed := fsutil.Exists(fsys, target)
	out, err := fsutil.CreateFileMode(fsys, target, mode, overwrite)
	if err != nil {
		return err
	}
	if !existed {
		x.Created = append(x.Created, target)
	}

	n, err := io.Copy(out, r)
	x.Bytes += n
	if err != nil {
		out.Close()
		return copyErr(err)
	}
	if err := out.Close(); err != nil {
		return apperrors.FromIO(err)
	}
	return nil
}

// pathSet matches paths by their absolute form
type pathSet map[string]struct{}

func newPathSet(paths []string) pathSet {
	set := make(pathSet, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			set[abs] = struct{}{}
		}
	}
	return set
}

func (s pathSet) has(path string) bool {
	if len(s) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := s[abs]
	return ok
}
