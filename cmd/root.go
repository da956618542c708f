package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/deploymenttheory/go-crunch/internal/command"
	"github.com/deploymenttheory/go-crunch/internal/composition"
	"github.com/deploymenttheory/go-crunch/internal/config"
	"github.com/deploymenttheory/go-crunch/internal/driver"
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/logger"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// Version is overridden at build time with -ldflags "-X .../cmd.Version=..."
var Version = "0.1.0"

var (
	cfgFile      string
	workflowFile string
	inputs       []string
	output       string
	noProgress   bool
)

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "crunch [flags] [FILES...]",
	Short: "Compress and decompress files by their extension",
	Long: `crunch picks what to do from file names alone.

Compressing: give the files and an output whose extension names the formats,
outermost last.
  crunch -i notes.txt -i photos/ -o backup.tar.gz
  crunch report.pdf -o report.pdf.zst

Decompressing: give compressed files and, optionally, a directory.
  crunch backup.tar.gz
  crunch backup.tar.gz logs.zip -o restored/

Supported formats: tar, zip, gz, bz, bz2, xz, lzma, lz, zst and the
shorthands tgz, tbz, tbz2, txz, tlz, tlzma, tzst. Run 'crunch formats'
for the full list.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("config") && cfgFile != "" {
			if err := config.Reload(cfgFile); err != nil {
				return err
			}
		}

		if err := bindFlags(cmd); err != nil {
			return err
		}
		if err := config.Refresh(); err != nil {
			return err
		}

		// Flags may have changed the log level or format
		for _, flag := range []string{"debug", "log-format", "log-to-file", "config"} {
			if cmd.Flags().Changed(flag) {
				return logger.InitLogger(config.Instance.LoggerConfig())
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if workflowFile != "" {
			return runWorkflow(ctx, workflowFile)
		}

		all := append(append([]string{}, inputs...), args...)
		if len(all) == 0 {
			return cmd.Help()
		}

		resolved, err := command.Resolve(all, output)
		if err != nil {
			return err
		}

		logger.LogDebug("Resolved command", map[string]interface{}{
			"kind":   resolved.Kind.String(),
			"inputs": len(resolved.Inputs),
			"output": output,
		})

		res, err := newDriver(cmd.ErrOrStderr()).Execute(ctx, resolved)
		if err != nil {
			return err
		}

		for _, out := range res.Outputs {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.LogError("Command execution failed", err, nil)
		printError(rootCmd.ErrOrStderr(), err)
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().StringVarP(&workflowFile, "workflow", "w", "", "workflow file to execute")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")
	rootCmd.PersistentFlags().Bool("log-to-file", false, "also write logs to the log_file setting, or the user state directory")

	rootCmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "files or directories to process (repeatable)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "file to compress into, or directory to decompress into")
	rootCmd.Flags().Bool("overwrite", false, "replace existing output files")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "do not draw progress bars")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(formatsCmd)
}

// bindFlags binds flags to the viper instance behind config.Instance. Only
// flags set on the command line override the file and environment.
func bindFlags(cmd *cobra.Command) error {
	v := config.Viper()
	bindings := map[string]string{
		"debug":       "debug",
		"log_format":  "log-format",
		"log_to_file": "log-to-file",
		"overwrite":   "overwrite",
	}
	for key, flag := range bindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func newDriver(progressOut io.Writer) *driver.Driver {
	opts := driver.Options{
		Overwrite: config.Instance.Overwrite,
		Codecs:    config.Instance.CodecOptions(),
	}
	if !noProgress && isTerminal(progressOut) {
		opts.Progress = func(description string, total int64) driver.Progress {
			return progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(progressOut),
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowBytes(true),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(progressOut) }),
			)
		}
	}
	return driver.New(afero.NewOsFs(), opts)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// runWorkflow loads, validates and executes a workflow file
func runWorkflow(ctx context.Context, file string) error {
	logger.LogInfo("Executing workflow", map[string]interface{}{
		"file": file,
	})

	fsys := afero.NewOsFs()
	workflow, err := composition.LoadWorkflow(fsys, file)
	if err != nil {
		return err
	}

	if errs := composition.ValidateWorkflow(workflow); len(errs) > 0 {
		for _, err := range errs {
			logger.LogError("Workflow validation error", err, nil)
		}
		return apperrors.InvalidInput(fmt.Sprintf("workflow '%s' failed validation: %v", file, multierr.Combine(errs...)))
	}

	return composition.NewExecutor(fsys, newDriver(os.Stderr)).ExecuteWorkflow(ctx, workflow)
}

// printError writes every error in err, one per line
func printError(w io.Writer, err error) {
	label := color.New(color.FgRed, color.Bold)
	for _, e := range multierr.Errors(err) {
		label.Fprint(w, "[ERROR] ")
		fmt.Fprintln(w, e.Error())
	}
}

// exitCode maps the first classified error to its exit code
func exitCode(err error) int {
	for _, e := range multierr.Errors(err) {
		if apperrors.KindOf(e) != 0 {
			return apperrors.ExitCode(e)
		}
	}
	return 1
}

// versionCmd shows the application version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "crunch v%s\n", Version)
	},
}
