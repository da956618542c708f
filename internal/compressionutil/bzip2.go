package compression

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// NewBzip2Writer wraps w in a bzip2 encoder. Files named .bz are written as
// bzip2 as well, the original bzip format has no encoder left in use.
func NewBzip2Writer(w io.Writer, opts Options) (io.WriteCloser, error) {
	var conf *bzip2.WriterConfig
	if opts.Bzip2Level != 0 {
		conf = &bzip2.WriterConfig{Level: opts.Bzip2Level}
	}

	bzip2Writer, err := bzip2.NewWriter(w, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create bzip2 writer: %w", err)
	}
	return bzip2Writer, nil
}

// NewBzip2Reader decodes a bzip2 stream
func NewBzip2Reader(r io.Reader) (io.ReadCloser, error) {
	bzip2Reader, err := bzip2.NewReader(r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bzip2 stream: %w", err)
	}
	return bzip2Reader, nil
}
