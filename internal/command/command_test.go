package command

import (
	"testing"

	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/extension"
	"github.com/deploymenttheory/go-crunch/internal/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressFilesIntoFolder(t *testing.T) {
	cmd, err := Resolve([]string{"file.zip"}, "folder/")
	require.NoError(t, err)

	assert.Equal(t, Command{
		Kind: Decompress,
		Inputs: []file.File{
			{Path: "file.zip", Extension: extension.Extension{extension.Zip}},
		},
		Output: &file.File{Path: "folder", Extension: nil},
	}, cmd)
}

func TestDecompressFiles(t *testing.T) {
	cmd, err := Resolve([]string{"file.zip", "file.tar"}, "")
	require.NoError(t, err)

	assert.Equal(t, Command{
		Kind: Decompress,
		Inputs: []file.File{
			{Path: "file.zip", Extension: extension.Extension{extension.Zip}},
			{Path: "file.tar", Extension: extension.Extension{extension.Tar}},
		},
		Output: nil,
	}, cmd)
}

func TestCompressFiles(t *testing.T) {
	cmd, err := Resolve([]string{"file", "file2.jpeg", "file3.ok"}, "file.tar")
	require.NoError(t, err)

	assert.Equal(t, Command{
		Kind: Compress,
		Inputs: []file.File{
			{Path: "file"},
			{Path: "file2.jpeg"},
			{Path: "file3.ok"},
		},
		Output: &file.File{Path: "file.tar", Extension: extension.Extension{extension.Tar}},
	}, cmd)
}

func TestCompressIntoStackedChain(t *testing.T) {
	cmd, err := Resolve([]string{"photos/"}, "photos.tar.gz.zst")
	require.NoError(t, err)

	assert.Equal(t, Compress, cmd.Kind)
	assert.Equal(t, extension.Extension{extension.Zstd, extension.Gzip, extension.Tar}, cmd.Output.Extension)
	assert.NoError(t, cmd.Validate())
}

func TestRecompressDecompressibleInputs(t *testing.T) {
	cmd, err := Resolve([]string{"old.tar.gz"}, "new.zip")
	require.NoError(t, err)

	assert.Equal(t, Compress, cmd.Kind)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		output  string
		wantErr error
	}{
		{
			name:    "inputs must be decompressible without output",
			inputs:  []string{"a_file", "file2.jpeg", "file3.ok"},
			output:  "",
			wantErr: apperrors.InputsMustHaveBeenDecompressible("a_file"),
		},
		{
			name:    "first offender is named",
			inputs:  []string{"ok.tar", "photo.jpeg", "other"},
			output:  "",
			wantErr: apperrors.InputsMustHaveBeenDecompressible("photo.jpeg"),
		},
		{
			name:    "output without extension",
			inputs:  []string{"notes.txt"},
			output:  "out",
			wantErr: apperrors.MissingExtension("out"),
		},
		{
			name:    "output with unknown extension",
			inputs:  []string{"notes.txt"},
			output:  "out.rar",
			wantErr: apperrors.UnknownExtension("out.rar"),
		},
		{
			name:    "no inputs",
			inputs:  nil,
			output:  "out.tar",
			wantErr: apperrors.InvalidInput("no input files given"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Resolve(tt.inputs, tt.output)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, Command{}, cmd)
		})
	}
}

func TestResolveIsTotal(t *testing.T) {
	names := []string{"", "a", "a.gz", "a.tar", "a.zip.tar", "a.jpeg", ".gz", "dir/", "a.tgz", "x.y.z"}

	for _, in := range names {
		for _, out := range names {
			var inputs []string
			if in != "" {
				inputs = []string{in, "b.tar.xz"}
			}

			assert.NotPanics(t, func() {
				cmd, err := Resolve(inputs, out)
				if err != nil {
					assert.NotZero(t, apperrors.KindOf(err), "%q -> %q", in, out)
					assert.Equal(t, Command{}, cmd)
					return
				}
				assert.NoError(t, cmd.Validate(), "%q -> %q", in, out)
			})
		}
	}
}

func TestValidate(t *testing.T) {
	out := file.New("out")
	err := Command{Kind: Compress, Inputs: file.NewAll([]string{"a"}), Output: &out}.Validate()
	assert.ErrorIs(t, err, apperrors.ErrMissingExtension)

	err = Command{Kind: Decompress, Inputs: file.NewAll([]string{"a.gz", "b"})}.Validate()
	assert.Equal(t, apperrors.InputsMustHaveBeenDecompressible("b"), err)

	err = Command{Kind: Compress, Inputs: file.NewAll([]string{"a"})}.Validate()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
