// Package command classifies a CLI invocation into a compress or decompress request.
package command

import (
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/extension"
	"github.com/deploymenttheory/go-crunch/internal/file"
)

// Kind tells the driver which direction to run the codecs in
type Kind int

const (
	Compress Kind = iota + 1
	Decompress
)

func (k Kind) String() string {
	switch k {
	case Compress:
		return "compress"
	case Decompress:
		return "decompress"
	default:
		return "unknown"
	}
}

// Command is a resolved, validated request.
//
// For Compress, Output is set and carries a recognized extension chain; Inputs
// may be arbitrary files or directories. For Decompress, every input carries a
// recognized chain and Output, when set, names the destination directory.
type Command struct {
	Kind   Kind
	Inputs []file.File
	Output *file.File
}

// Resolve turns raw input paths and an optional output path (empty for none)
// into a Command. It performs no I/O.
func Resolve(inputs []string, output string) (Command, error) {
	if len(inputs) == 0 {
		return Command{}, apperrors.InvalidInput("no input files given")
	}

	files := file.NewAll(inputs)

	if output == "" {
		if offender, ok := firstUndecompressible(files); ok {
			return Command{}, apperrors.InputsMustHaveBeenDecompressible(offender.Path)
		}
		return Command{Kind: Decompress, Inputs: files}, nil
	}

	out := file.New(output)
	if out.HasExtension() {
		return Command{Kind: Compress, Inputs: files, Output: &out}, nil
	}

	// An output without a known chain can only be a destination directory,
	// which requires every input to be decompressible.
	if _, ok := firstUndecompressible(files); ok {
		if extension.HasDotExtension(out.Path) {
			return Command{}, apperrors.UnknownExtension(out.Path)
		}
		return Command{}, apperrors.MissingExtension(out.Path)
	}
	return Command{Kind: Decompress, Inputs: files, Output: &out}, nil
}

// Validate checks the invariants of a Command built by hand
func (c Command) Validate() error {
	if len(c.Inputs) == 0 {
		return apperrors.InvalidInput("no input files given")
	}

	switch c.Kind {
	case Compress:
		if c.Output == nil {
			return apperrors.InvalidInput("compression requires an output file")
		}
		if !c.Output.Extension.Valid() {
			if extension.HasDotExtension(c.Output.Path) {
				return apperrors.UnknownExtension(c.Output.Path)
			}
			return apperrors.MissingExtension(c.Output.Path)
		}
	case Decompress:
		for _, f := range c.Inputs {
			if !f.Extension.Valid() {
				return apperrors.InputsMustHaveBeenDecompressible(f.Path)
			}
		}
	default:
		return apperrors.InvalidInput("unknown command kind")
	}
	return nil
}

func firstUndecompressible(files []file.File) (file.File, bool) {
	for _, f := range files {
		if !f.HasExtension() {
			return f, true
		}
	}
	return file.File{}, false
}
