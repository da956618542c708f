package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// run executes the root command with args and resets package flag state afterwards
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		inputs, output, workflowFile, cfgFile = nil, "", "", ""
		for _, name := range []string{"input", "output", "overwrite"} {
			if f := rootCmd.Flags().Lookup(name); f != nil {
				f.Changed = false
			}
		}
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--no-progress"}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRoundTripThroughCLI(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("remember the milk"), 0644))
	archive := filepath.Join(dir, "notes.tar.xz")

	out, err := run(t, "-i", src, "-o", archive)
	require.NoError(t, err)
	assert.Contains(t, out, archive)

	restore := filepath.Join(dir, "restore")
	_, err = run(t, archive, "-o", restore)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(restore, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "remember the milk", string(got))
}

func TestCLIReportsUndecompressibleInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	_, err := run(t, src)
	assert.ErrorIs(t, err, apperrors.ErrInputsMustHaveBeenDecompressible)
	assert.Equal(t, 2, exitCode(err))
}

func TestFormatsCommand(t *testing.T) {
	var buf bytes.Buffer
	writeFormats(&buf)

	out := buf.String()
	for _, want := range []string{".tar", ".zst", ".lzma", ".tgz", ".tar.gz", "archive", "stream"} {
		assert.Contains(t, out, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "crunch v"+Version+"\n", out)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, 3, exitCode(&apperrors.Error{Kind: apperrors.KindFileNotFound, Name: "x"}))
	assert.Equal(t, 4, exitCode(multierr.Combine(
		errors.New("plain"),
		&apperrors.Error{Kind: apperrors.KindAlreadyExists, Name: "y"},
	)))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, multierr.Combine(errors.New("first"), errors.New("second")))

	assert.Contains(t, buf.String(), "[ERROR] first\n")
	assert.Contains(t, buf.String(), "[ERROR] second\n")
}
