package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	compression "github.com/deploymenttheory/go-crunch/internal/compressionutil"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/deploymenttheory/go-crunch/internal/logger"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "crunch"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "CRUNCH"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
	LogToFile bool   `mapstructure:"log_to_file"`

	// Replace existing output files instead of failing
	Overwrite bool `mapstructure:"overwrite"`

	// Encoder settings
	Codecs struct {
		GzipLevel       int `mapstructure:"gzip_level"`
		GzipConcurrency int `mapstructure:"gzip_concurrency"`
		Bzip2Level      int `mapstructure:"bzip2_level"`
		ZstdLevel       int `mapstructure:"zstd_level"`
	} `mapstructure:"codecs"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Viper instance
	v *viper.Viper

	// Ensure thread safety
	initOnce sync.Once
	mu       sync.Mutex
)

// Initialize sets up the configuration system. Only the first call loads
// anything, use Reload to read a different file later.
func Initialize(cfgFile string) error {
	var err error
	initOnce.Do(func() {
		err = load(cfgFile)
	})
	return err
}

// Reload reads the configuration again, typically after --config was parsed
func Reload(cfgFile string) error {
	return load(cfgFile)
}

func load(cfgFile string) error {
	mu.Lock()
	defer mu.Unlock()

	nv := viper.New()
	setDefaults(nv)

	if cfgFile != "" {
		nv.SetConfigFile(cfgFile)
	} else {
		nv.SetConfigName(AppName)
		nv.SetConfigType("yaml")
		addSearchPaths(nv)
	}

	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	loaded := false
	file := ""
	if readErr := nv.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", readErr)
		}
	} else {
		loaded = true
		file = nv.ConfigFileUsed()
	}

	var cfg AppConfig
	if err := nv.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	v = nv
	Instance = cfg
	ConfigLoaded = loaded
	ConfigFile = file
	return nil
}

// Viper returns the viper instance backing Instance, for flag binding
func Viper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	if v == nil {
		v = viper.New()
		setDefaults(v)
	}
	return v
}

// Refresh re-reads Instance from viper after flags were bound
func Refresh() error {
	var cfg AppConfig
	if err := Viper().Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	mu.Lock()
	Instance = cfg
	mu.Unlock()
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")
	v.SetDefault("log_to_file", false)
	v.SetDefault("overwrite", false)

	defaults := compression.DefaultOptions()
	v.SetDefault("codecs.gzip_level", defaults.GzipLevel)
	v.SetDefault("codecs.gzip_concurrency", defaults.GzipConcurrency)
	v.SetDefault("codecs.bzip2_level", defaults.Bzip2Level)
	v.SetDefault("codecs.zstd_level", defaults.ZstdLevel)
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	v.AddConfigPath(fsutil.GetConfigDir(AppName))

	for _, dir := range fsutil.GetSystemConfigDirs(AppName) {
		v.AddConfigPath(dir)
	}
}

// CodecOptions converts the codec section into encoder options
func (c AppConfig) CodecOptions() compression.Options {
	return compression.Options{
		GzipLevel:       c.Codecs.GzipLevel,
		GzipConcurrency: c.Codecs.GzipConcurrency,
		Bzip2Level:      c.Codecs.Bzip2Level,
		ZstdLevel:       c.Codecs.ZstdLevel,
	}
}

// DefaultLogFile returns the log file location used when logging to a file is requested without a path
func DefaultLogFile() string {
	return filepath.Join(fsutil.GetLogDir(AppName), AppName+".log")
}

// LogFilePath is log_file, or DefaultLogFile when only log_to_file is set
func (c AppConfig) LogFilePath() string {
	if c.LogFile == "" && c.LogToFile {
		return DefaultLogFile()
	}
	return c.LogFile
}

// LoggerConfig builds the logger settings for this configuration
func (c AppConfig) LoggerConfig() logger.LoggerConfig {
	return logger.LoggerConfig{
		Debug:     c.Debug,
		LogFormat: c.LogFormat,
		LogFile:   c.LogFilePath(),
	}
}
