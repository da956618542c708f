package compression

import (
	"bytes"

	"github.com/deploymenttheory/go-crunch/internal/extension"
)

// HeaderSize is the number of leading bytes DetectFormat needs to see every magic number
const HeaderSize = 262

var magicNumbers = []struct {
	format extension.CompressionFormat
	offset int
	magic  []byte
}{
	{extension.Tar, 257, []byte{0x75, 0x73, 0x74, 0x61, 0x72}},
	{extension.Zip, 0, []byte{0x50, 0x4B, 0x03, 0x04}},
	{extension.Zip, 0, []byte{0x50, 0x4B, 0x05, 0x06}},
	{extension.Gzip, 0, []byte{0x1F, 0x8B}},
	{extension.Bzip2, 0, []byte{0x42, 0x5A, 0x68}},
	{extension.Xz, 0, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
	{extension.Zstd, 0, []byte{0x28, 0xB5, 0x2F, 0xFD}},
	{extension.Lz, 0, []byte{0x4C, 0x5A, 0x49, 0x50}},
}

// DetectFormat identifies a format by its magic number. Only formats with a
// reliable signature are reported; legacy LZMA and pre-POSIX tar are not.
func DetectFormat(header []byte) (extension.CompressionFormat, bool) {
	for _, m := range magicNumbers {
		end := m.offset + len(m.magic)
		if len(header) >= end && bytes.Equal(header[m.offset:end], m.magic) {
			return m.format, true
		}
	}
	return 0, false
}

// SameFamily reports whether two formats share an on-disk encoding
func SameFamily(a, b extension.CompressionFormat) bool {
	if a == b {
		return true
	}
	isBzip := func(f extension.CompressionFormat) bool {
		return f == extension.Bzip || f == extension.Bzip2
	}
	return isBzip(a) && isBzip(b)
}
