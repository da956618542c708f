package main

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-crunch/cmd"
	"github.com/deploymenttheory/go-crunch/internal/config"
	"github.com/deploymenttheory/go-crunch/internal/logger"
)

func main() {
	// Get app configuration file from environment if specified
	configFile := os.Getenv(config.EnvPrefix + "_CONFIG")

	// 1. Initialize application configuration
	if err := config.Initialize(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logging based on application configuration
	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	logger.LogDebug("Application started", map[string]interface{}{
		"version":     cmd.Version,
		"config_file": config.ConfigFile,
	})

	// 3. Run the CLI; flags may still override the configuration
	code := cmd.Execute()

	// Ensure logs are flushed before exit
	_ = logger.Sync()
	os.Exit(code)
}

// initLogging initializes the logger based on configuration settings
func initLogging() error {
	return logger.InitLogger(config.Instance.LoggerConfig())
}
