package compression

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-crunch/internal/extension"
	"go.uber.org/multierr"
)

// NewWriter wraps w in the encoder of a single stream codec
func NewWriter(format extension.CompressionFormat, w io.Writer, opts Options) (io.WriteCloser, error) {
	switch format {
	case extension.Gzip:
		return NewGzipWriter(w, opts)
	case extension.Bzip, extension.Bzip2:
		return NewBzip2Writer(w, opts)
	case extension.Xz:
		return NewXZWriter(w)
	case extension.Lzma:
		return NewLZMAWriter(w)
	case extension.Lz:
		return NewLzipWriter(w)
	case extension.Zstd:
		return NewZstdWriter(w, opts)
	default:
		return nil, fmt.Errorf("%s is not a stream codec", format)
	}
}

// NewReader wraps r in the decoder of a single stream codec
func NewReader(format extension.CompressionFormat, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case extension.Gzip:
		return NewGzipReader(r)
	case extension.Bzip, extension.Bzip2:
		return NewBzip2Reader(r)
	case extension.Xz:
		return NewXZReader(r)
	case extension.Lzma:
		return NewLZMAReader(r)
	case extension.Lz:
		return NewLzipReader(r)
	case extension.Zstd:
		return NewZstdReader(r)
	default:
		return nil, fmt.Errorf("%s is not a stream codec", format)
	}
}

// StreamCodecs returns the stream codec part of a chain, outermost first
func StreamCodecs(ext extension.Extension) extension.Extension {
	if ext.IsArchive() {
		return ext[:len(ext)-1]
	}
	return ext
}

// chainWriter holds the encoders of a chain, outermost first
type chainWriter struct {
	layers []io.WriteCloser
}

// NewChainWriter stacks encoders on w so that data written to the result goes
// through the innermost codec first and the outermost codec last. codecs is
// ordered outermost first and must not contain archive formats.
func NewChainWriter(w io.Writer, codecs extension.Extension, opts Options) (io.WriteCloser, error) {
	cw := &chainWriter{}
	var current io.Writer = w
	for _, format := range codecs {
		layer, err := NewWriter(format, current, opts)
		if err != nil {
			return nil, multierr.Append(err, cw.Close())
		}
		cw.layers = append(cw.layers, layer)
		current = layer
	}
	if len(cw.layers) == 0 {
		cw.layers = append(cw.layers, nopWriteCloser{w})
	}
	return cw, nil
}

func (c *chainWriter) Write(p []byte) (int, error) {
	return c.layers[len(c.layers)-1].Write(p)
}

// Close flushes the encoders from the innermost outwards
func (c *chainWriter) Close() error {
	var err error
	for i := len(c.layers) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.layers[i].Close())
	}
	return err
}

// chainReader holds the decoders of a chain, outermost first
type chainReader struct {
	layers []io.ReadCloser
	top    io.Reader
}

// NewChainReader stacks decoders on r, stripping the outermost codec first.
// codecs is ordered outermost first and must not contain archive formats.
func NewChainReader(r io.Reader, codecs extension.Extension) (io.ReadCloser, error) {
	cr := &chainReader{top: r}
	for _, format := range codecs {
		layer, err := NewReader(format, cr.top)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("%s layer: %w", format, err), cr.Close())
		}
		cr.layers = append(cr.layers, layer)
		cr.top = layer
	}
	return cr, nil
}

func (c *chainReader) Read(p []byte) (int, error) {
	return c.top.Read(p)
}

func (c *chainReader) Close() error {
	var err error
	for i := len(c.layers) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.layers[i].Close())
	}
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
