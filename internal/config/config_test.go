package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadFromFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "crunch.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
overwrite: true
log_format: json
codecs:
  zstd_level: 19
  gzip_concurrency: 4
`), 0644))

	require.NoError(t, Reload(cfgFile))

	assert.True(t, ConfigLoaded)
	assert.Equal(t, cfgFile, ConfigFile)
	assert.True(t, Instance.Overwrite)
	assert.Equal(t, "json", Instance.LogFormat)

	opts := Instance.CodecOptions()
	assert.Equal(t, 19, opts.ZstdLevel)
	assert.Equal(t, 4, opts.GzipConcurrency)
	assert.Equal(t, 6, opts.Bzip2Level, "unset keys keep their defaults")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CRUNCH_OVERWRITE", "true")
	t.Setenv("CRUNCH_CODECS_GZIP_LEVEL", "9")

	cfgFile := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("debug: false\n"), 0644))
	require.NoError(t, Reload(cfgFile))

	assert.True(t, Instance.Overwrite)
	assert.Equal(t, 9, Instance.Codecs.GzipLevel)
}

func TestReloadRejectsBrokenFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("overwrite: [unterminated"), 0644))

	assert.Error(t, Reload(cfgFile))
}

func TestDefaultLogFile(t *testing.T) {
	assert.Equal(t, "crunch.log", filepath.Base(DefaultLogFile()))
}

func TestLogFilePath(t *testing.T) {
	tests := []struct {
		name string
		cfg  AppConfig
		want string
	}{
		{"console only", AppConfig{}, ""},
		{"explicit file", AppConfig{LogFile: "/var/log/c.log", LogToFile: true}, "/var/log/c.log"},
		{"state directory fallback", AppConfig{LogToFile: true}, DefaultLogFile()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.LogFilePath())
			assert.Equal(t, tt.want, tt.cfg.LoggerConfig().LogFile)
		})
	}
}

func TestGzipLevelZeroIsKept(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("codecs:\n  gzip_level: 0\n"), 0644))
	require.NoError(t, Reload(cfgFile))

	assert.Equal(t, 0, Instance.CodecOptions().GzipLevel)
}
