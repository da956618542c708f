package driver

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	compression "github.com/deploymenttheory/go-crunch/internal/compressionutil"
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/extension"
	"github.com/deploymenttheory/go-crunch/internal/file"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/deploymenttheory/go-crunch/internal/logger"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
)

func (d *Driver) compress(ctx context.Context, inputs []file.File, output file.File) (Result, error) {
	chain := output.Extension
	sources := make([]string, 0, len(inputs))
	for _, in := range inputs {
		info, err := d.fs.Stat(in.Path)
		if err != nil {
			return Result{}, apperrors.FromIO(err)
		}
		if samePath(in.Path, output.Path) {
			return Result{}, apperrors.InvalidInput(fmt.Sprintf("cannot compress '%s' into itself", in.Path))
		}
		if !chain.IsArchive() && (len(inputs) > 1 || !info.Mode().IsRegular()) {
			suggested := append(append(extension.Extension{}, chain...), extension.Tar)
			return Result{}, apperrors.InvalidInput(fmt.Sprintf(
				"'%s' holds a single stream, put several files or directories into an archive such as '%s'",
				output.Path, suggested.FileName(output.Stem())))
		}
		sources = append(sources, in.Path)
	}

	if output.Dir() != "." {
		if err := fsutil.CreateDirIfNotExists(d.fs, output.Dir()); err != nil {
			return Result{}, err
		}
	}

	out, err := fsutil.CreateFile(d.fs, output.Path, d.opts.Overwrite)
	if err != nil {
		return Result{}, err
	}

	bar := d.startProgress("compressing "+output.Name(), -1)
	counter := &countingWriter{w: io.MultiWriter(out, bar)}
	members, err := d.writeChain(ctx, counter, chain, sources, output.Path)
	_ = bar.Finish()
	err = multierr.Append(err, apperrors.FromIO(out.Close()))
	if err != nil {
		fsutil.RemoveQuietly(d.fs, output.Path)
		return Result{}, err
	}

	logger.LogInfo("Compressed files", map[string]interface{}{
		"output":  output.Path,
		"formats": chain.String(),
		"inputs":  len(inputs),
		"members": members,
		"size":    humanize.Bytes(uint64(counter.n)),
	})

	return Result{Outputs: []string{output.Path}, BytesWritten: counter.n}, nil
}

// writeChain encodes sources into w following chain and returns the number of
// archive members written (1 for a single stream). self is the file being
// written, which archives leave out when it lies inside a source directory.
func (d *Driver) writeChain(ctx context.Context, w io.Writer, chain extension.Extension, sources []string, self string) (members int, err error) {
	codecs := compression.StreamCodecs(chain)
	encoder, err := compression.NewChainWriter(w, codecs, d.opts.Codecs)
	if err != nil {
		return 0, apperrors.IO("", err)
	}
	defer func() {
		if closeErr := encoder.Close(); closeErr != nil {
			err = multierr.Append(err, apperrors.IO("", closeErr))
		}
	}()

	switch chain.Innermost() {
	case extension.Tar:
		return compression.WriteTar(ctx, d.fs, encoder, sources, self)
	case extension.Zip:
		return compression.WriteZip(ctx, d.fs, encoder, sources, self)
	default:
		src, err := fsutil.OpenFile(d.fs, sources[0])
		if err != nil {
			return 0, err
		}
		defer src.Close()

		if _, err := io.Copy(encoder, src); err != nil {
			return 0, apperrors.IO(sources[0], err)
		}
		return 1, nil
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
