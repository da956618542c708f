package driver

import (
	"bytes"
	"context"
	"errors"
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
	"github.com/spf13/afero"
)

func (d *Driver) decompress(ctx context.Context, inputs []file.File, output *file.File) (Result, error) {
	var result Result

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dst := in.Dir()
		if output != nil {
			dst = output.Path
		}
		createdDst := !fsutil.Exists(d.fs, dst)
		if err := fsutil.CreateDirIfNotExists(d.fs, dst); err != nil {
			return result, err
		}

		outputs, written, err := d.decompressFile(ctx, in, dst)
		if err != nil {
			if createdDst {
				fsutil.RemoveQuietly(d.fs, dst)
			}
			return result, err
		}

		logger.LogInfo("Decompressed file", map[string]interface{}{
			"input":       in.Path,
			"formats":     in.Extension.String(),
			"destination": dst,
			"outputs":     len(outputs),
			"size":        humanize.Bytes(uint64(written)),
		})

		result.Outputs = append(result.Outputs, outputs...)
		result.BytesWritten += written
	}

	return result, nil
}

func (d *Driver) decompressFile(ctx context.Context, in file.File, dst string) ([]string, int64, error) {
	src, err := fsutil.OpenFile(d.fs, in.Path)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, 0, apperrors.FromIO(err)
	}
	if info.IsDir() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("'%s' is a directory, not a compressed file", in.Path))
	}

	if err := checkSignature(src, in); err != nil {
		return nil, 0, err
	}

	chain := in.Extension
	codecs := compression.StreamCodecs(chain)

	bar := d.startProgress("decompressing "+in.Name(), info.Size())
	defer bar.Finish()
	tracked := io.TeeReader(src, bar)

	switch chain.Innermost() {
	case extension.Zip:
		if len(codecs) == 0 {
			x, err := compression.ExtractZIP(ctx, d.fs, src, info.Size(), in.Path, dst, d.opts.Overwrite)
			return d.finishExtraction(x, err)
		}
		return d.extractWrappedZip(ctx, tracked, in, codecs, dst)

	case extension.Tar:
		decoder, err := openDecoder(tracked, in, codecs)
		if err != nil {
			return nil, 0, err
		}
		defer decoder.Close()

		x, err := compression.ExtractTar(ctx, d.fs, decoder, dst, d.opts.Overwrite)
		return d.finishExtraction(x, wrapDecodeError(in, err))

	default:
		return d.decompressStream(tracked, in, codecs, dst)
	}
}

// finishExtraction removes what a failed extraction created
func (d *Driver) finishExtraction(x *compression.Extraction, err error) ([]string, int64, error) {
	if err != nil {
		logger.LogDebug("Removing partial extraction", map[string]interface{}{
			"created": len(x.Created),
		})
		x.Rollback(d.fs)
		return nil, 0, err
	}
	return x.Paths, x.Bytes, nil
}

// extractWrappedZip decodes the stream codecs into memory because the zip
// reader needs random access to the central directory
func (d *Driver) extractWrappedZip(ctx context.Context, src io.Reader, in file.File, codecs extension.Extension, dst string) ([]string, int64, error) {
	decoder, err := openDecoder(src, in, codecs)
	if err != nil {
		return nil, 0, err
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, wrapDecodeError(in, err)
	}

	logger.LogDebug("Buffered zip archive", map[string]interface{}{
		"input": in.Path,
		"size":  humanize.Bytes(uint64(len(data))),
	})

	x, err := compression.ExtractZIP(ctx, d.fs, bytes.NewReader(data), int64(len(data)), in.Path, dst, d.opts.Overwrite)
	return d.finishExtraction(x, err)
}

func (d *Driver) decompressStream(src io.Reader, in file.File, codecs extension.Extension, dst string) ([]string, int64, error) {
	target := filepath.Join(dst, in.Stem())

	decoder, err := openDecoder(src, in, codecs)
	if err != nil {
		return nil, 0, err
	}
	defer decoder.Close()

	out, err := fsutil.CreateFile(d.fs, target, d.opts.Overwrite)
	if err != nil {
		return nil, 0, err
	}

	written, err := io.Copy(out, decoder)
	if err != nil {
		out.Close()
		fsutil.RemoveQuietly(d.fs, target)
		return nil, 0, wrapDecodeError(in, err)
	}
	if err := out.Close(); err != nil {
		fsutil.RemoveQuietly(d.fs, target)
		return nil, 0, apperrors.FromIO(err)
	}

	return []string{target}, written, nil
}

func openDecoder(src io.Reader, in file.File, codecs extension.Extension) (io.ReadCloser, error) {
	decoder, err := compression.NewChainReader(src, codecs)
	if err != nil {
		return nil, wrapDecodeError(in, err)
	}
	return decoder, nil
}

// checkSignature compares the magic number of src with the outermost format
// its name claims, so a mislabeled file fails with a clear message
func checkSignature(src afero.File, in file.File) error {
	header := make([]byte, compression.HeaderSize)
	n, err := src.ReadAt(header, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperrors.FromIO(err)
	}

	detected, ok := compression.DetectFormat(header[:n])
	expected := in.Extension.Outermost()
	if !ok || compression.SameFamily(detected, expected) {
		return nil
	}

	reason := fmt.Sprintf("content is %s, not %s", detected, expected)
	if expected == extension.Zip {
		return apperrors.InvalidZipArchive(in.Path, reason)
	}
	return &apperrors.Error{Kind: apperrors.KindIOError, Name: in.Path, Reason: reason}
}

// wrapDecodeError labels codec failures with the input file; classified
// errors pass through untouched
func wrapDecodeError(in file.File, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.KindOf(err) != 0 || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &apperrors.Error{Kind: apperrors.KindIOError, Name: in.Path, Reason: "failed to decode " + in.Extension.String(), Err: err}
}
