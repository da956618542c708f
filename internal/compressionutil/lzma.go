package compression

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// NewLZMAWriter wraps w in a legacy LZMA ("lzma-alone") encoder
func NewLZMAWriter(w io.Writer) (io.WriteCloser, error) {
	lzmaWriter, err := lzma.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create lzma writer: %w", err)
	}
	return lzmaWriter, nil
}

// NewLZMAReader decodes a legacy LZMA stream
func NewLZMAReader(r io.Reader) (io.ReadCloser, error) {
	lzmaReader, err := lzma.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open lzma stream: %w", err)
	}
	return io.NopCloser(lzmaReader), nil
}
