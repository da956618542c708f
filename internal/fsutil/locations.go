// fsutil/locations.go
package fsutil

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

// GetHomeDir returns the user's home directory
func GetHomeDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return home, nil
}

// GetConfigDir returns the per-user configuration directory for the application
func GetConfigDir(appName string) string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// GetSystemConfigDirs returns the system-wide configuration directories, most
// important first
func GetSystemConfigDirs(appName string) []string {
	dirs := make([]string, 0, len(xdg.ConfigDirs))
	for _, dir := range xdg.ConfigDirs {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	return dirs
}

// GetLogDir returns the per-user log directory for the application
func GetLogDir(appName string) string {
	return filepath.Join(xdg.StateHome, appName, "logs")
}
