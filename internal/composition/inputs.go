package composition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

const globMeta = "*?[{"

// expandInputs replaces glob patterns with the files they match, in lexical
// order. "**" crosses directories, "*" does not. Plain paths are kept even when
// they do not exist, the driver reports those.
func expandInputs(fsys afero.Fs, patterns []string) ([]string, error) {
	var inputs []string

	for _, pattern := range patterns {
		pattern = fsutil.ExpandHome(pattern)
		if !strings.ContainsAny(pattern, globMeta) {
			inputs = append(inputs, pattern)
			continue
		}

		matches, err := matchGlob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("pattern '%s' matched no files", pattern))
		}
		inputs = append(inputs, matches...)
	}

	return inputs, nil
}

func matchGlob(fsys afero.Fs, pattern string) ([]string, error) {
	slashed := filepath.ToSlash(filepath.Clean(pattern))
	g, err := glob.Compile(slashed, '/')
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("bad pattern '%s': %v", pattern, err))
	}

	root := filepath.FromSlash(staticPrefix(slashed))
	if _, err := fsys.Stat(root); err != nil {
		return nil, nil
	}

	var matches []string
	err = afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return apperrors.FromIO(err)
		}
		if g.Match(filepath.ToSlash(path)) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}

// staticPrefix returns the directory part of a pattern before the first
// segment holding a wildcard
func staticPrefix(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, globMeta) {
			prefix := strings.Join(segments[:i], "/")
			if prefix == "" && strings.HasPrefix(pattern, "/") {
				return "/"
			}
			if prefix == "" {
				return "."
			}
			return prefix
		}
	}
	return pattern
}
