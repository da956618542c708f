package compression

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/deploymenttheory/go-crunch/internal/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPayload(t *testing.T, size int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(size)))
	data := make([]byte, size)
	// half random, half repetitive so every codec actually has to work
	rng.Read(data[:size/2])
	for i := size / 2; i < size; i++ {
		data[i] = byte(i % 7)
	}
	return data
}

func roundTrip(t *testing.T, codecs extension.Extension, payload []byte) []byte {
	t.Helper()

	var compressed bytes.Buffer
	w, err := NewChainWriter(&compressed, codecs, DefaultOptions())
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewChainReader(bytes.NewReader(compressed.Bytes()), codecs)
	require.NoError(t, err)
	defer r.Close()

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestSingleCodecRoundTrip(t *testing.T) {
	for _, format := range extension.Formats() {
		if format.IsArchive() {
			continue
		}
		t.Run(format.String(), func(t *testing.T) {
			payload := randomPayload(t, 64*1024)
			assert.Equal(t, payload, roundTrip(t, extension.Extension{format}, payload))
		})
	}
}

func TestStackedChainRoundTrip(t *testing.T) {
	chain := extension.Extension{
		extension.Zstd, extension.Xz, extension.Bzip, extension.Gzip,
		extension.Lz, extension.Lzma, extension.Bzip2, extension.Gzip,
	}
	payload := randomPayload(t, 16*1024)

	assert.Equal(t, payload, roundTrip(t, chain, payload))
}

func TestEmptyPayloadRoundTrip(t *testing.T) {
	for _, chain := range []extension.Extension{{extension.Gzip}, {extension.Lz}, {extension.Zstd, extension.Xz}} {
		assert.Empty(t, roundTrip(t, chain, nil), chain.String())
	}
}

func TestChainWriterAppliesOutermostLast(t *testing.T) {
	var compressed bytes.Buffer
	w, err := NewChainWriter(&compressed, extension.Extension{extension.Zstd, extension.Gzip}, DefaultOptions())
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	format, ok := DetectFormat(compressed.Bytes())
	require.True(t, ok)
	assert.Equal(t, extension.Zstd, format)
}

func TestEmptyChainPassesThrough(t *testing.T) {
	assert.Equal(t, []byte("plain"), roundTrip(t, nil, []byte("plain")))
}

func TestNewWriterRejectsArchives(t *testing.T) {
	_, err := NewWriter(extension.Tar, io.Discard, DefaultOptions())
	assert.Error(t, err)
	_, err = NewReader(extension.Zip, bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestStreamCodecs(t *testing.T) {
	assert.Equal(t, extension.Extension{extension.Gzip}, StreamCodecs(extension.Extension{extension.Gzip, extension.Tar}))
	assert.Equal(t, extension.Extension{extension.Xz}, StreamCodecs(extension.Extension{extension.Xz}))
	assert.Empty(t, StreamCodecs(extension.Extension{extension.Zip}))
}

func TestChainReaderReportsBrokenLayer(t *testing.T) {
	_, err := NewChainReader(bytes.NewReader([]byte("definitely not gzip")), extension.Extension{extension.Gzip})
	assert.Error(t, err)
}

func TestGzipLevelIsPassedThrough(t *testing.T) {
	payload := bytes.Repeat([]byte("gzip level zero only stores "), 2000)

	compress := func(level int) []byte {
		var buf bytes.Buffer
		opts := DefaultOptions()
		opts.GzipLevel = level
		w, err := NewGzipWriter(&buf, opts)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	stored := compress(0)
	assert.Greater(t, len(stored), len(payload))
	assert.Less(t, len(compress(-1)), len(payload)/10)

	r, err := NewGzipReader(bytes.NewReader(stored))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}
