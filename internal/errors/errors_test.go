package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
)

func TestMessagesIncludeFileName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{InputsMustHaveBeenDecompressible("a_file"), "file 'a_file' is not decompressible"},
		{MissingExtension("out"), "cannot compress to 'out', likely because it has an unsupported (or missing) extension"},
		{UnknownExtension("out.jpeg"), "cannot compress to 'out.jpeg', its extension is not a known format"},
		{InvalidInput(""), "when -o/--output is omitted, all input files should be compressed files"},
		{InvalidInput("no input files"), "invalid input: no input files"},
		{InvalidZipArchive("x.zip", "checksum mismatch"), "invalid zip archive: 'x.zip' (checksum mismatch)"},
		{&Error{Kind: KindFileNotFound}, "file not found"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestSentinelsMatchByKind(t *testing.T) {
	err := fmt.Errorf("resolving: %w", InputsMustHaveBeenDecompressible("a_file"))

	assert.ErrorIs(t, err, ErrInputsMustHaveBeenDecompressible)
	assert.NotErrorIs(t, err, ErrMissingExtension)
	assert.Equal(t, KindInputsMustHaveBeenDecompressible, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestFromIO(t *testing.T) {
	_, err := os.Open("/definitely/not/here")
	classified := FromIO(err)

	assert.ErrorIs(t, classified, ErrFileNotFound)
	assert.ErrorIs(t, classified, fs.ErrNotExist)
	assert.Contains(t, classified.Error(), "/definitely/not/here")

	assert.ErrorIs(t, FromIO(&fs.PathError{Op: "open", Path: "p", Err: fs.ErrPermission}), ErrPermissionDenied)
	assert.ErrorIs(t, FromIO(&fs.PathError{Op: "mkdir", Path: "p", Err: fs.ErrExist}), ErrAlreadyExists)
	assert.ErrorIs(t, FromIO(errors.New("disk on fire")), ErrIO)
	assert.Nil(t, FromIO(nil))

	already := MissingExtension("x")
	assert.Same(t, already, FromIO(already))
}

func TestFromZip(t *testing.T) {
	assert.ErrorIs(t, FromZip("a.zip", zip.ErrFormat), ErrInvalidZipArchive)
	assert.ErrorIs(t, FromZip("a.zip", zip.ErrChecksum), ErrInvalidZipArchive)
	assert.ErrorIs(t, FromZip("a.zip", zip.ErrAlgorithm), ErrUnsupportedZipArchive)
	assert.ErrorIs(t, FromZip("a.zip", &fs.PathError{Op: "open", Path: "a.zip", Err: fs.ErrNotExist}), ErrFileNotFound)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(MissingExtension("x")))
	assert.Equal(t, 3, ExitCode(FromIO(&fs.PathError{Op: "open", Path: "p", Err: fs.ErrNotExist})))
	assert.Equal(t, 4, ExitCode(ErrAlreadyExists))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}
