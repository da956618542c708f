package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	for _, f := range Formats() {
		got, ok := Lookup(f.Token())
		assert.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}

	_, ok := Lookup("jpeg")
	assert.False(t, ok)
	_, ok = Lookup("GZ")
	assert.False(t, ok, "registry tokens are lowercase")
}

func TestXzAndLzmaAreDistinct(t *testing.T) {
	xz, _ := Lookup("xz")
	lzma, _ := Lookup("lzma")
	lz, _ := Lookup("lz")

	assert.NotEqual(t, xz, lzma)
	assert.NotEqual(t, lzma, lz)
	assert.NotEqual(t, xz, lz)
}

func TestIsArchive(t *testing.T) {
	for _, f := range Formats() {
		want := f == Tar || f == Zip
		assert.Equal(t, want, f.IsArchive(), f.String())
	}
}

func TestShorthands(t *testing.T) {
	for token, ext := range Shorthands() {
		assert.True(t, ext.Valid(), token)
		assert.Equal(t, Tar, ext.Innermost(), token)
	}

	ext, ok := LookupShorthand("tgz")
	assert.True(t, ok)
	assert.Equal(t, Extension{Gzip, Tar}, ext)

	ext[0] = Zstd
	again, _ := LookupShorthand("tgz")
	assert.Equal(t, Gzip, again[0], "callers must not be able to mutate the registry")
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "gzip", Gzip.String())
	assert.Equal(t, "lzip", Lz.String())
	assert.Equal(t, "CompressionFormat(42)", CompressionFormat(42).String())
}
