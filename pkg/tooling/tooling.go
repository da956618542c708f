// Package tooling exposes crunch to other Go programs: the same resolution
// rules and codecs as the CLI, without going through os.Args.
package tooling

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-crunch/internal/command"
	"github.com/deploymenttheory/go-crunch/internal/composition"
	"github.com/deploymenttheory/go-crunch/internal/config"
	"github.com/deploymenttheory/go-crunch/internal/driver"
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/logger"
	"github.com/spf13/afero"
)

// InitOptions contains options for initializing the tooling API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
	Overwrite   bool   // Replace existing outputs
}

// Result describes what a call produced
type Result struct {
	Kind         string   // "compress" or "decompress"
	Outputs      []string // Files written (archive members when extracting)
	BytesWritten int64
}

// WorkflowResult contains the results of a workflow execution
type WorkflowResult struct {
	Success      bool                   // Whether the workflow completed successfully
	ErrorMessage string                 // Error message if any
	Variables    map[string]interface{} // Final state of variables after workflow execution
}

var (
	initialized bool
	initMu      sync.Mutex

	// fs is swapped for an in-memory filesystem in tests
	fs afero.Fs = afero.NewOsFs()
)

// Initialize initializes the tooling API with the given options. Later calls
// are no-ops.
func Initialize(options InitOptions) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	configErr := config.Initialize(options.ConfigFile)

	if options.Debug {
		config.Instance.Debug = true
	}
	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}
	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}
	if options.Overwrite {
		config.Instance.Overwrite = true
	}

	if !options.SuppressLog {
		if err := logger.InitLogger(config.Instance.LoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.LogInfo("Tooling API initialized", map[string]interface{}{
			"config_file": config.ConfigFile,
			"debug":       config.Instance.Debug,
		})
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	initialized = true
	return nil
}

// DefaultOptions returns the default initialization options
func DefaultOptions() InitOptions {
	return InitOptions{
		LogFormat:   "human",
		SuppressLog: true,
	}
}

func ensureInitialized() error {
	initMu.Lock()
	done := initialized
	initMu.Unlock()
	if done {
		return nil
	}
	if err := Initialize(DefaultOptions()); err != nil {
		return fmt.Errorf("failed to initialize tooling API: %w", err)
	}
	return nil
}

func newDriver() *driver.Driver {
	return driver.New(fs, driver.Options{
		Overwrite: config.Instance.Overwrite,
		Codecs:    config.Instance.CodecOptions(),
	})
}

// Run behaves like the CLI: output decides between compressing and
// decompressing, and may be empty to decompress next to each input.
func Run(ctx context.Context, inputs []string, output string) (*Result, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	cmd, err := command.Resolve(inputs, output)
	if err != nil {
		return nil, err
	}
	return execute(ctx, cmd)
}

// Compress writes inputs into output, which must carry a known extension
func Compress(ctx context.Context, inputs []string, output string) (*Result, error) {
	return runKind(ctx, command.Compress, inputs, output)
}

// Decompress extracts inputs into outputDir, or next to each input when
// outputDir is empty
func Decompress(ctx context.Context, inputs []string, outputDir string) (*Result, error) {
	return runKind(ctx, command.Decompress, inputs, outputDir)
}

func runKind(ctx context.Context, want command.Kind, inputs []string, output string) (*Result, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	cmd, err := command.Resolve(inputs, output)
	if err != nil {
		return nil, err
	}
	if cmd.Kind != want {
		return nil, apperrors.InvalidInput(fmt.Sprintf("'%s' would %s, not %s", output, cmd.Kind, want))
	}
	return execute(ctx, cmd)
}

func execute(ctx context.Context, cmd command.Command) (*Result, error) {
	res, err := newDriver().Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: cmd.Kind.String(), Outputs: res.Outputs, BytesWritten: res.BytesWritten}, nil
}

// ExecuteWorkflow executes a workflow defined in a file
func ExecuteWorkflow(ctx context.Context, workflowFile string) (*WorkflowResult, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	logger.LogInfo("Executing workflow", map[string]interface{}{
		"file": workflowFile,
	})

	workflow, err := composition.LoadWorkflow(fs, workflowFile)
	if err != nil {
		return &WorkflowResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Failed to load workflow: %s", err.Error()),
		}, err
	}

	return runWorkflow(ctx, workflow)
}

// ExecuteWorkflowFromYAML executes a workflow defined in a YAML string
func ExecuteWorkflowFromYAML(ctx context.Context, workflowYAML string) (*WorkflowResult, error) {
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	workflow, err := composition.ParseWorkflow(strings.NewReader(workflowYAML), "yaml")
	if err != nil {
		return &WorkflowResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Failed to parse workflow: %s", err.Error()),
		}, err
	}

	return runWorkflow(ctx, workflow)
}

func runWorkflow(ctx context.Context, workflow *composition.Workflow) (*WorkflowResult, error) {
	if errors := composition.ValidateWorkflow(workflow); len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}

		errorMessage := fmt.Sprintf("Workflow validation failed with %d errors: %s",
			len(errors), strings.Join(errorMessages, "; "))

		return &WorkflowResult{
			Success:      false,
			ErrorMessage: errorMessage,
		}, fmt.Errorf("%s", errorMessage)
	}

	if err := composition.NewExecutor(fs, newDriver()).ExecuteWorkflow(ctx, workflow); err != nil {
		return &WorkflowResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Workflow execution failed: %s", err.Error()),
			Variables:    workflow.Variables,
		}, err
	}

	return &WorkflowResult{
		Success:   true,
		Variables: workflow.Variables,
	}, nil
}

// Shutdown flushes buffered logs
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		logger.LogInfo("Tooling API shutting down", nil)
		return logger.Sync()
	}
	return nil
}
