package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies every failure crunch can report
type Kind int

const (
	KindUnknownExtension Kind = iota + 1
	KindMissingExtension
	KindInvalidInput
	KindIOError
	KindFileNotFound
	KindAlreadyExists
	KindPermissionDenied
	KindInvalidZipArchive
	KindUnsupportedZipArchive
	KindInputsMustHaveBeenDecompressible
)

var kindNames = map[Kind]string{
	KindUnknownExtension:                 "UnknownExtensionError",
	KindMissingExtension:                 "MissingExtensionError",
	KindInvalidInput:                     "InvalidInput",
	KindIOError:                          "IOError",
	KindFileNotFound:                     "FileNotFound",
	KindAlreadyExists:                    "AlreadyExists",
	KindPermissionDenied:                 "PermissionDenied",
	KindInvalidZipArchive:                "InvalidZipArchive",
	KindUnsupportedZipArchive:            "UnsupportedZipArchive",
	KindInputsMustHaveBeenDecompressible: "InputsMustHaveBeenDecompressible",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Name holds the triggering file name when one
// is known, Reason a short explanation, Err the underlying cause.
type Error struct {
	Kind   Kind
	Name   string
	Reason string
	Err    error
}

var (
	// Extension Errors
	ErrUnknownExtension = &Error{Kind: KindUnknownExtension}
	ErrMissingExtension = &Error{Kind: KindMissingExtension}

	// Input Errors
	ErrInvalidInput                     = &Error{Kind: KindInvalidInput}
	ErrInputsMustHaveBeenDecompressible = &Error{Kind: KindInputsMustHaveBeenDecompressible}

	// File & Directory Errors
	ErrIO               = &Error{Kind: KindIOError}
	ErrFileNotFound     = &Error{Kind: KindFileNotFound}
	ErrAlreadyExists    = &Error{Kind: KindAlreadyExists}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}

	// Archive Errors
	ErrInvalidZipArchive     = &Error{Kind: KindInvalidZipArchive}
	ErrUnsupportedZipArchive = &Error{Kind: KindUnsupportedZipArchive}
)

// UnknownExtension reports a name whose dot-extension matches no known format
func UnknownExtension(name string) *Error {
	return &Error{Kind: KindUnknownExtension, Name: name}
}

// MissingExtension reports a name without any dot-extension
func MissingExtension(name string) *Error {
	return &Error{Kind: KindMissingExtension, Name: name}
}

// InputsMustHaveBeenDecompressible reports an input that cannot be decompressed
func InputsMustHaveBeenDecompressible(name string) *Error {
	return &Error{Kind: KindInputsMustHaveBeenDecompressible, Name: name}
}

// InvalidInput reports a request that cannot be satisfied. An empty reason
// yields the generic message.
func InvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

// InvalidZipArchive reports a corrupt archive
func InvalidZipArchive(name, reason string) *Error {
	return &Error{Kind: KindInvalidZipArchive, Name: name, Reason: reason}
}

// UnsupportedZipArchive reports an archive using features crunch cannot read
func UnsupportedZipArchive(name, reason string) *Error {
	return &Error{Kind: KindUnsupportedZipArchive, Name: name, Reason: reason}
}

// IO wraps an unclassified filesystem or codec failure
func IO(name string, err error) *Error {
	return &Error{Kind: KindIOError, Name: name, Err: err}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidInput:
		if e.Reason != "" {
			return "invalid input: " + e.Reason
		}
		return "when -o/--output is omitted, all input files should be compressed files"
	case KindMissingExtension:
		return fmt.Sprintf("cannot compress to '%s', likely because it has an unsupported (or missing) extension", e.Name)
	case KindUnknownExtension:
		return fmt.Sprintf("cannot compress to '%s', its extension is not a known format", e.Name)
	case KindInputsMustHaveBeenDecompressible:
		return fmt.Sprintf("file '%s' is not decompressible", e.Name)
	case KindFileNotFound:
		return e.withName("file not found")
	case KindAlreadyExists:
		return e.withName("file already exists")
	case KindPermissionDenied:
		return e.withName("permission denied")
	case KindInvalidZipArchive:
		return e.withReason(e.withName("invalid zip archive"))
	case KindUnsupportedZipArchive:
		return e.withReason(e.withName("unsupported zip archive"))
	case KindIOError:
		msg := e.withReason(e.withName("I/O error"))
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	default:
		return e.Kind.String()
	}
}

func (e *Error) withName(msg string) string {
	if e.Name == "" {
		return msg
	}
	return fmt.Sprintf("%s: '%s'", msg, e.Name)
}

func (e *Error) withReason(msg string) string {
	if e.Reason == "" {
		return msg
	}
	return msg + " (" + e.Reason + ")"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// FromIO classifies an operating system error. Errors already classified are returned as is.
func FromIO(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	name := ""
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		name = pathErr.Path
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: KindFileNotFound, Name: name, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &Error{Kind: KindPermissionDenied, Name: name, Err: err}
	case errors.Is(err, fs.ErrExist):
		return &Error{Kind: KindAlreadyExists, Name: name, Err: err}
	default:
		return IO(name, err)
	}
}

// ExitCode maps an error to the process exit status used by the CLI
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch KindOf(err) {
	case KindUnknownExtension, KindMissingExtension, KindInvalidInput, KindInputsMustHaveBeenDecompressible:
		return 2
	case KindFileNotFound:
		return 3
	case KindAlreadyExists:
		return 4
	case KindPermissionDenied:
		return 5
	case KindInvalidZipArchive, KindUnsupportedZipArchive:
		return 6
	default:
		return 1
	}
}
