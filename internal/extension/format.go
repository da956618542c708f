package extension

import "fmt"

// CompressionFormat is one of the codec or archive formats crunch understands
type CompressionFormat int

const (
	Tar CompressionFormat = iota
	Zip
	Gzip
	Bzip
	Bzip2
	Xz
	Lzma
	Lz
	Zstd
)

// formatInfo describes a single registry entry
type formatInfo struct {
	name    string
	token   string
	archive bool
}

var registry = map[CompressionFormat]formatInfo{
	Tar:   {name: "tar", token: "tar", archive: true},
	Zip:   {name: "zip", token: "zip", archive: true},
	Gzip:  {name: "gzip", token: "gz"},
	Bzip:  {name: "bzip", token: "bz"},
	Bzip2: {name: "bzip2", token: "bz2"},
	Xz:    {name: "xz", token: "xz"},
	Lzma:  {name: "lzma", token: "lzma"},
	Lz:    {name: "lzip", token: "lz"},
	Zstd:  {name: "zstd", token: "zst"},
}

var formatsByToken = map[string]CompressionFormat{
	"tar":  Tar,
	"zip":  Zip,
	"gz":   Gzip,
	"bz":   Bzip,
	"bz2":  Bzip2,
	"xz":   Xz,
	"lzma": Lzma,
	"lz":   Lz,
	"zst":  Zstd,
}

// shorthands are single tokens standing for a compressed tarball
var shorthands = map[string]Extension{
	"tgz":   {Gzip, Tar},
	"tbz":   {Bzip, Tar},
	"tbz2":  {Bzip2, Tar},
	"txz":   {Xz, Tar},
	"tlz":   {Lz, Tar},
	"tlzma": {Lzma, Tar},
	"tzst":  {Zstd, Tar},
}

// Lookup returns the format registered for a lowercase extension token
func Lookup(token string) (CompressionFormat, bool) {
	f, ok := formatsByToken[token]
	return f, ok
}

// LookupShorthand returns the chain a tarball shorthand token (tgz, txz, ...) expands to
func LookupShorthand(token string) (Extension, bool) {
	ext, ok := shorthands[token]
	if !ok {
		return nil, false
	}
	return append(Extension(nil), ext...), true
}

// Shorthands returns the shorthand tokens and their expansions
func Shorthands() map[string]Extension {
	out := make(map[string]Extension, len(shorthands))
	for token, ext := range shorthands {
		out[token] = append(Extension(nil), ext...)
	}
	return out
}

// Formats returns every registered format in declaration order
func Formats() []CompressionFormat {
	return []CompressionFormat{Tar, Zip, Gzip, Bzip, Bzip2, Xz, Lzma, Lz, Zstd}
}

// String returns the human name of the format
func (f CompressionFormat) String() string {
	if info, ok := registry[f]; ok {
		return info.name
	}
	return fmt.Sprintf("CompressionFormat(%d)", int(f))
}

// Token returns the canonical file extension token, without the leading dot
func (f CompressionFormat) Token() string {
	return registry[f].token
}

// IsArchive reports whether the format bundles multiple member files
func (f CompressionFormat) IsArchive() bool {
	return registry[f].archive
}

// Valid reports whether f is a member of the registry
func (f CompressionFormat) Valid() bool {
	_, ok := registry[f]
	return ok
}
