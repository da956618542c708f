package compression

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewZstdWriter wraps w in a zstandard encoder. ZstdLevel follows the zstd
// command line scale (1-22).
func NewZstdWriter(w io.Writer, opts Options) (io.WriteCloser, error) {
	level := zstd.SpeedDefault
	if opts.ZstdLevel != 0 {
		level = zstd.EncoderLevelFromZstd(opts.ZstdLevel)
	}

	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	return encoder, nil
}

// NewZstdReader decodes a zstandard stream
func NewZstdReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd stream: %w", err)
	}
	return decoder.IOReadCloser(), nil
}
