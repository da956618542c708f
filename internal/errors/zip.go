package errors

import (
	"errors"

	"github.com/klauspost/compress/zip"
)

// FromZip classifies an error returned by the zip reader for the archive name
func FromZip(name string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, zip.ErrFormat):
		return &Error{Kind: KindInvalidZipArchive, Name: name, Reason: "not a valid zip file", Err: err}
	case errors.Is(err, zip.ErrChecksum):
		return &Error{Kind: KindInvalidZipArchive, Name: name, Reason: "checksum mismatch", Err: err}
	case errors.Is(err, zip.ErrAlgorithm):
		return &Error{Kind: KindUnsupportedZipArchive, Name: name, Reason: "unsupported compression method", Err: err}
	default:
		return FromIO(err)
	}
}
