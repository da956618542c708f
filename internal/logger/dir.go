package logger

import (
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/spf13/afero"
)

func ensureDir(dir string) error {
	return fsutil.CreateDirIfNotExists(afero.NewOsFs(), dir)
}
