package compression

import (
	"fmt"
	"io"

	"github.com/klauspost/pgzip"
)

const gzipBlockSize = 1 << 20

// NewGzipWriter wraps w in a parallel gzip encoder. GzipLevel is passed
// through, so 0 stores without compression and -1 picks the default.
func NewGzipWriter(w io.Writer, opts Options) (io.WriteCloser, error) {
	gzipWriter, err := pgzip.NewWriterLevel(w, opts.GzipLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if opts.GzipConcurrency > 0 {
		if err := gzipWriter.SetConcurrency(gzipBlockSize, opts.GzipConcurrency); err != nil {
			return nil, fmt.Errorf("failed to configure gzip concurrency: %w", err)
		}
	}

	return gzipWriter, nil
}

// NewGzipReader decodes a gzip stream, including multi-member files
func NewGzipReader(r io.Reader) (io.ReadCloser, error) {
	gzipReader, err := pgzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return gzipReader, nil
}
