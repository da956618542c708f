package compression

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math/bits"

	"github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz/lzma"
)

// lzip member layout: "LZIP", version, coded dictionary size, raw LZMA stream
// with end marker, then CRC32 / data size / member size, all little endian.
const (
	lzipHeaderSize  = 6
	lzipTrailerSize = 20
	lzipVersion     = 1
)

var lzipMagic = []byte("LZIP")

// ErrLzipFormat is returned for data that is not a well formed lzip file
var ErrLzipFormat = errors.New("invalid lzip stream")

// lzipProperties are the only literal/position settings lzip allows
var lzipProperties = lzma.Properties{LC: 3, LP: 0, PB: 2}

type lzipWriter struct {
	lzma   *lzma.Writer
	body   *lzipBody
	dst    io.Writer
	crc    hash.Hash32
	size   uint64
	closed bool
}

// lzipBody drops the classic LZMA header the encoder emits and counts the rest
type lzipBody struct {
	w    io.Writer
	skip int
	n    uint64
}

func (b *lzipBody) Write(p []byte) (int, error) {
	total := len(p)
	if b.skip > 0 {
		k := min(b.skip, len(p))
		b.skip -= k
		p = p[k:]
	}
	n, err := b.w.Write(p)
	b.n += uint64(n)
	if err != nil {
		return total - len(p) + n, err
	}
	return total, nil
}

// NewLzipWriter wraps w in a single member lzip encoder. The member is
// streamed; nothing but the LZMA window is held in memory.
func NewLzipWriter(w io.Writer) (io.WriteCloser, error) {
	opts := lzip.WriterOptions{DictSize: lzip.DefaultDictSize}
	if err := opts.Verify(); err != nil {
		return nil, fmt.Errorf("invalid lzip encoder settings: %w", err)
	}

	header := append(append([]byte{}, lzipMagic...), lzipVersion, byte(bits.Len32(opts.DictSize-1)))
	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write lzip header: %w", err)
	}

	props := lzipProperties
	cfg := lzma.WriterConfig{
		Properties: &props,
		DictCap:    int(opts.DictSize),
		EOSMarker:  true,
	}
	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid lzip encoder settings: %w", err)
	}

	body := &lzipBody{w: w, skip: lzma.HeaderLen}
	lzmaWriter, err := cfg.NewWriter(body)
	if err != nil {
		return nil, fmt.Errorf("failed to create lzip writer: %w", err)
	}

	return &lzipWriter{
		lzma: lzmaWriter,
		body: body,
		dst:  w,
		crc:  crc32.NewIEEE(),
	}, nil
}

func (l *lzipWriter) Write(p []byte) (int, error) {
	n, err := l.lzma.Write(p)
	l.crc.Write(p[:n])
	l.size += uint64(n)
	return n, err
}

func (l *lzipWriter) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.lzma.Close(); err != nil {
		return fmt.Errorf("failed to finish lzip stream: %w", err)
	}

	trailer := make([]byte, lzipTrailerSize)
	binary.LittleEndian.PutUint32(trailer[0:4], l.crc.Sum32())
	binary.LittleEndian.PutUint64(trailer[4:12], l.size)
	binary.LittleEndian.PutUint64(trailer[12:20], lzipHeaderSize+l.body.n+lzipTrailerSize)

	if _, err := l.dst.Write(trailer); err != nil {
		return fmt.Errorf("failed to write lzip trailer: %w", err)
	}
	return nil
}

// lzipReader decodes members one after another from the front. Each LZMA
// stream stops at its end marker, so the trailer and the next member follow
// directly in src.
type lzipReader struct {
	src     *bufio.Reader
	body    *lzipBodyReader
	member  *lzma.Reader
	crc     hash.Hash32
	size    uint64
	members int
	err     error
}

// lzipBodyReader serves a synthetic LZMA header, then the member body byte by
// byte so the decoder never reads past the end marker
type lzipBodyReader struct {
	header []byte
	src    *bufio.Reader
	n      uint64
}

func (b *lzipBodyReader) ReadByte() (byte, error) {
	if len(b.header) > 0 {
		c := b.header[0]
		b.header = b.header[1:]
		return c, nil
	}
	c, err := b.src.ReadByte()
	if err == nil {
		b.n++
	}
	return c, err
}

func (b *lzipBodyReader) Read(p []byte) (int, error) {
	for i := range p {
		c, err := b.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = c
	}
	return len(p), nil
}

// NewLzipReader decodes an lzip file, including multi-member files. The first
// member header is checked before returning.
func NewLzipReader(r io.Reader) (io.ReadCloser, error) {
	z := &lzipReader{src: bufio.NewReader(r), crc: crc32.NewIEEE()}
	if err := z.openMember(); err != nil {
		return nil, err
	}
	return io.NopCloser(z), nil
}

func (z *lzipReader) Read(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}

	for {
		n, err := z.member.Read(p)
		z.crc.Write(p[:n])
		z.size += uint64(n)

		if err != nil && !errors.Is(err, io.EOF) {
			z.err = fmt.Errorf("%w: member %d: %v", ErrLzipFormat, z.members, err)
			return n, z.err
		}
		// a drained member keeps returning io.EOF, so the trailer is
		// checked on the call after the last bytes are delivered
		if n > 0 || err == nil {
			return n, nil
		}

		if err := z.finishMember(); err != nil {
			z.err = err
			return 0, err
		}
		if _, err := z.src.Peek(1); errors.Is(err, io.EOF) {
			z.err = io.EOF
			return 0, io.EOF
		}
		if err := z.openMember(); err != nil {
			z.err = err
			return 0, err
		}
	}
}

func (z *lzipReader) openMember() error {
	header := make([]byte, lzipHeaderSize)
	if _, err := io.ReadFull(z.src, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated header", ErrLzipFormat)
		}
		return err
	}
	if !bytes.Equal(header[:4], lzipMagic) {
		return fmt.Errorf("%w: %w", ErrLzipFormat, lzip.ErrInvalidMagic)
	}
	switch v := header[4]; v {
	case lzipVersion:
	case 0:
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.UnsupportedVersionError{Version: v})
	default:
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.UnknownVersionError{Version: v})
	}

	dictSize := uint32(1) << (header[5] & 0x1f)
	dictSize -= (dictSize / 16) * uint32(header[5]>>5)
	switch {
	case dictSize < lzip.MinDictSize:
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.DictSizeTooSmallError{DictSize: dictSize})
	case dictSize > lzip.MaxDictSize:
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.DictSizeTooLargeError{DictSize: dictSize})
	}

	lzmaHeader := make([]byte, lzma.HeaderLen)
	lzmaHeader[0] = lzipProperties.Code()
	binary.LittleEndian.PutUint32(lzmaHeader[1:5], dictSize)
	binary.LittleEndian.PutUint64(lzmaHeader[5:13], ^uint64(0))

	z.body = &lzipBodyReader{header: lzmaHeader, src: z.src}
	member, err := lzma.NewReader(z.body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLzipFormat, err)
	}

	z.member = member
	z.crc.Reset()
	z.size = 0
	z.members++
	return nil
}

func (z *lzipReader) finishMember() error {
	trailer := make([]byte, lzipTrailerSize)
	if _, err := io.ReadFull(z.src, trailer); err != nil {
		return fmt.Errorf("%w: truncated trailer", ErrLzipFormat)
	}

	if crc := binary.LittleEndian.Uint32(trailer[0:4]); crc != z.crc.Sum32() {
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.InvalidCRCError{CRC: crc})
	}
	if size := binary.LittleEndian.Uint64(trailer[4:12]); size != z.size {
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.InvalidDataSizeError{DataSize: size})
	}
	if size := binary.LittleEndian.Uint64(trailer[12:20]); size != lzipHeaderSize+z.body.n+lzipTrailerSize {
		return fmt.Errorf("%w: %w", ErrLzipFormat, &lzip.InvalidMemberSizeError{MemberSize: size})
	}
	return nil
}
