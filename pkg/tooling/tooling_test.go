package tooling

import (
	"context"
	"testing"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := fs
	mem := afero.NewMemMapFs()
	fs = mem
	t.Cleanup(func() { fs = prev })
	return mem
}

func TestCompressThenDecompress(t *testing.T) {
	mem := useMemFs(t)
	require.NoError(t, afero.WriteFile(mem, "/in/a.txt", []byte("alpha"), 0644))
	require.NoError(t, afero.WriteFile(mem, "/in/b.txt", []byte("beta"), 0644))
	ctx := context.Background()

	res, err := Compress(ctx, []string{"/in/a.txt", "/in/b.txt"}, "/out/ab.tbz2")
	require.NoError(t, err)
	assert.Equal(t, "compress", res.Kind)
	assert.Equal(t, []string{"/out/ab.tbz2"}, res.Outputs)

	res, err = Decompress(ctx, []string{"/out/ab.tbz2"}, "/restored")
	require.NoError(t, err)
	assert.Equal(t, "decompress", res.Kind)
	assert.ElementsMatch(t, []string{"/restored/a.txt", "/restored/b.txt"}, res.Outputs)
}

func TestCompressRejectsDirectoryOutput(t *testing.T) {
	mem := useMemFs(t)
	require.NoError(t, afero.WriteFile(mem, "/in/a.txt.gz", []byte{}, 0644))

	_, err := Compress(context.Background(), []string{"/in/a.txt.gz"}, "/restore")
	assert.ErrorContains(t, err, "would decompress, not compress")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, apperrors.ExitCode(apperrors.InvalidInput("")), apperrors.ExitCode(err))
}

func TestRunReportsResolveErrors(t *testing.T) {
	useMemFs(t)

	_, err := Run(context.Background(), []string{"plain.txt"}, "")
	assert.ErrorIs(t, err, apperrors.ErrInputsMustHaveBeenDecompressible)
}

func TestExecuteWorkflowFromYAML(t *testing.T) {
	mem := useMemFs(t)
	require.NoError(t, afero.WriteFile(mem, "/data/report.csv", []byte("a,b\n1,2\n"), 0644))

	result, err := ExecuteWorkflowFromYAML(context.Background(), `
name: api
steps:
  - name: pack
    inputs: [/data/report.csv]
    output: /data/report.csv.zst
`)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "/data/report.csv.zst", result.Variables["pack_output"])
}

func TestExecuteWorkflowValidationFailure(t *testing.T) {
	useMemFs(t)

	result, err := ExecuteWorkflowFromYAML(context.Background(), `steps: []`)
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "workflow name is required")
}
