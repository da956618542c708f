package compression

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// NewXZWriter wraps w in an XZ container encoder
func NewXZWriter(w io.Writer) (io.WriteCloser, error) {
	xzWriter, err := xz.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}
	return xzWriter, nil
}

// NewXZReader decodes an XZ container
func NewXZReader(r io.Reader) (io.ReadCloser, error) {
	xzReader, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xz stream: %w", err)
	}
	return io.NopCloser(xzReader), nil
}
