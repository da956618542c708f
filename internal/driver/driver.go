// Package driver executes resolved commands against a filesystem.
package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-crunch/internal/command"
	compression "github.com/deploymenttheory/go-crunch/internal/compressionutil"
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/spf13/afero"
)

// Options controls how a Driver writes its outputs
type Options struct {
	Overwrite bool
	Codecs    compression.Options

	// Progress, when set, is fed the bytes written while compressing and the
	// bytes read while decompressing
	Progress ProgressFunc
}

// ProgressFunc starts tracking one file. total is -1 when the size is not
// known up front.
type ProgressFunc func(description string, total int64) Progress

// Progress receives processed bytes through Write
type Progress interface {
	io.Writer
	Finish() error
}

// Result summarizes what a command produced
type Result struct {
	Outputs      []string
	BytesWritten int64
}

// Driver runs Commands. Compression applies the innermost format of the output
// chain first; decompression strips the outermost format of each input first.
type Driver struct {
	fs   afero.Fs
	opts Options
}

// New returns a Driver working on fsys
func New(fsys afero.Fs, opts Options) *Driver {
	return &Driver{fs: fsys, opts: opts}
}

// Execute validates and runs cmd
func (d *Driver) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	switch cmd.Kind {
	case command.Compress:
		return d.compress(ctx, cmd.Inputs, *cmd.Output)
	case command.Decompress:
		return d.decompress(ctx, cmd.Inputs, cmd.Output)
	default:
		return Result{}, apperrors.InvalidInput(fmt.Sprintf("unsupported command kind %s", cmd.Kind))
	}
}

func (d *Driver) startProgress(description string, total int64) Progress {
	if d.opts.Progress == nil {
		return nopProgress{}
	}
	return d.opts.Progress(description, total)
}

type nopProgress struct{}

func (nopProgress) Write(p []byte) (int, error) { return len(p), nil }
func (nopProgress) Finish() error               { return nil }

// countingWriter tracks how many bytes reach the underlying file
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
