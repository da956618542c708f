// fsutil/paths.go
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
)

// SecureJoin joins an archive member name onto root and refuses names that
// would land outside of root (absolute paths, ".." segments).
func SecureJoin(root, name string) (string, error) {
	cleaned, err := cleanMember(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, cleaned), nil
}

// ScopedJoin is SecureJoin that also resolves symlinks already present under
// root, so a member written through a previously extracted link still ends up
// inside root.
func ScopedJoin(fsys afero.Fs, root, name string) (string, error) {
	cleaned, err := cleanMember(name)
	if err != nil {
		return "", err
	}
	return securejoin.SecureJoinVFS(root, cleaned, aferoVFS{fsys})
}

func cleanMember(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("absolute member path %q", name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("member path %q escapes the destination", name)
	}
	return cleaned, nil
}

// aferoVFS lets securejoin walk an afero filesystem
type aferoVFS struct {
	fs afero.Fs
}

func (v aferoVFS) Lstat(name string) (os.FileInfo, error) {
	if lstater, ok := v.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return v.fs.Stat(name)
}

func (v aferoVFS) Readlink(name string) (string, error) {
	if reader, ok := v.fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
}

// MemberName converts a path relative to an archive root into the slash
// separated form stored in tar and zip headers
func MemberName(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
