package extension

import (
	"path/filepath"
	"strings"
)

// Extension is the chain of formats implied by a file name, ordered from the
// outermost format (the rightmost token) to the innermost one. Only the
// innermost format may be an archive.
type Extension []CompressionFormat

// Parse returns the extension chain of a file name, or nil when no token is recognized
func Parse(name string) Extension {
	ext, _ := Split(name)
	return ext
}

// Split parses the extension chain of a file name and returns it together with
// the stem that is left once the recognized tokens are removed.
//
// Tokens are read right to left. Reading stops at the first unrecognized token,
// when no dot is left, when removing the token would leave an empty stem, or
// right after an archive token: a format can never be wrapped inside an archive,
// so "a.tar.zip" yields [Zip] with stem "a.tar".
func Split(name string) (Extension, string) {
	stem := filepath.Base(name)
	if stem == "." || stem == string(filepath.Separator) {
		return nil, stem
	}

	var chain Extension
	for {
		dot := strings.LastIndexByte(stem, '.')
		if dot <= 0 {
			break
		}

		token := strings.ToLower(stem[dot+1:])
		formats, ok := lookupToken(token)
		if !ok {
			break
		}

		chain = append(chain, formats...)
		stem = stem[:dot]

		if formats[len(formats)-1].IsArchive() {
			break
		}
	}

	if len(chain) == 0 {
		return nil, stem
	}
	return chain, stem
}

// HasDotExtension reports whether the base name carries any dot-separated
// token at all, recognized or not
func HasDotExtension(name string) bool {
	base := filepath.Base(name)
	dot := strings.LastIndexByte(base, '.')
	return dot > 0 && dot < len(base)-1
}

func lookupToken(token string) (Extension, bool) {
	if f, ok := Lookup(token); ok {
		return Extension{f}, true
	}
	return LookupShorthand(token)
}

// Outermost returns the format applied last during compression
func (e Extension) Outermost() CompressionFormat {
	return e[0]
}

// Innermost returns the format closest to the original data
func (e Extension) Innermost() CompressionFormat {
	return e[len(e)-1]
}

// IsArchive reports whether the chain ends in an archive format
func (e Extension) IsArchive() bool {
	return len(e) > 0 && e.Innermost().IsArchive()
}

// Valid checks the chain invariants: non-empty, registered formats, archive innermost only
func (e Extension) Valid() bool {
	if len(e) == 0 {
		return false
	}
	for i, f := range e {
		if !f.Valid() {
			return false
		}
		if f.IsArchive() && i != len(e)-1 {
			return false
		}
	}
	return true
}

// String renders the chain the way it appears in a file name, e.g. "tar.gz"
func (e Extension) String() string {
	tokens := make([]string, len(e))
	for i, f := range e {
		tokens[len(e)-1-i] = f.Token()
	}
	return strings.Join(tokens, ".")
}

// FileName appends the chain's tokens to stem
func (e Extension) FileName(stem string) string {
	if len(e) == 0 {
		return stem
	}
	return stem + "." + e.String()
}
