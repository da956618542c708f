package compression

import (
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/pgzip"
)

// Options tunes the stream encoders. Start from DefaultOptions: a zero
// GzipLevel means no compression, the other zero levels select the codec's
// default.
type Options struct {
	GzipLevel       int
	GzipConcurrency int
	Bzip2Level      int
	ZstdLevel       int
}

// DefaultOptions returns the encoder settings used when nothing is configured
func DefaultOptions() Options {
	return Options{
		GzipLevel:       pgzip.DefaultCompression,
		GzipConcurrency: 0,
		Bzip2Level:      bzip2.DefaultCompression,
		ZstdLevel:       3,
	}
}
