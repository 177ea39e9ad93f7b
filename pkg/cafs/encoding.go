// Copyright © 2018 One Concern

package cafs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/oneconcern/gitlib/pkg/cafs/status"
)

// Compression applied to stored objects
type Compression string

const (
	// CompressionNone stores the framed object as is
	CompressionNone Compression = "none"

	// CompressionZstd stores the framed object as a single zstd frame
	CompressionZstd Compression = "zstd"

	// DefaultCompression for new stores
	DefaultCompression = CompressionZstd

	// maxHeaderSize is an upper bound for "<kind> <length>\x00"
	maxHeaderSize = 32
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ParseCompression validates a compression name
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case CompressionNone, CompressionZstd:
		return c, nil
	default:
		return "", status.ErrUnknownCompression.WrapMessage(s)
	}
}

func (c Compression) String() string {
	return string(c)
}

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	encoderErr  error
)

func zstdEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder, encoderErr
}

// encode builds the stored representation of an object
func encode(c Compression, kind Kind, payload []byte) ([]byte, error) {
	hdr := header(kind, len(payload))
	framed := make([]byte, 0, len(hdr)+len(payload))
	framed = append(framed, hdr...)
	framed = append(framed, payload...)

	switch c {
	case CompressionNone:
		return framed, nil
	case CompressionZstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(framed, make([]byte, 0, len(framed)/2)), nil
	default:
		return nil, status.ErrUnknownCompression.WrapMessage(string(c))
	}
}

// openFrame returns a reader over the framed bytes, uncompressing them when needed.
// The returned func releases the decoder.
func openFrame(r io.Reader) (*bufio.Reader, func(), error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil || !bytes.Equal(magic, zstdMagic) {
		// too short to be compressed: let header parsing decide
		return br, func() {}, nil
	}

	dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, nil, status.ErrCorruptObject.Wrap(err)
	}
	return bufio.NewReader(dec), dec.Close, nil
}

// readHeader parses "<kind> <length>\x00"
func readHeader(br *bufio.Reader) (Kind, int64, error) {
	hdr := make([]byte, 0, maxHeaderSize)
	for len(hdr) < maxHeaderSize {
		c, err := br.ReadByte()
		if err != nil {
			return "", 0, status.ErrCorruptObject.WrapMessage("truncated object header")
		}
		if c == 0 {
			return parseHeader(hdr)
		}
		hdr = append(hdr, c)
	}
	return "", 0, status.ErrCorruptObject.WrapMessage("object header too long")
}

func parseHeader(hdr []byte) (Kind, int64, error) {
	sp := bytes.IndexByte(hdr, ' ')
	if sp < 0 {
		return "", 0, status.ErrCorruptObject.WrapMessage("malformed object header")
	}
	kind := Kind(hdr[:sp])
	if !kind.Valid() {
		return "", 0, status.ErrCorruptObject.WrapMessage("unknown kind in header: " + string(kind))
	}
	size, err := strconv.ParseInt(string(hdr[sp+1:]), 10, 64)
	if err != nil || size < 0 {
		return "", 0, status.ErrCorruptObject.WrapMessage("invalid length in header")
	}
	return kind, size, nil
}

// decode parses the stored representation of an object
func decode(stored []byte, maxSize int64) (Kind, []byte, error) {
	br, release, err := openFrame(bytes.NewReader(stored))
	if err != nil {
		return "", nil, err
	}
	defer release()

	kind, size, err := readHeader(br)
	if err != nil {
		return "", nil, err
	}
	if size > maxSize {
		return "", nil, status.ErrObjectTooBig.WrapMessage(strconv.FormatInt(size, 10) + " bytes")
	}

	// the header length is not trusted: memory grows with the data actually present
	var payload bytes.Buffer
	n, err := payload.ReadFrom(io.LimitReader(br, size+1))
	if err != nil {
		return "", nil, status.ErrCorruptObject.Wrap(err)
	}
	switch {
	case n < size:
		return "", nil, status.ErrCorruptObject.WrapMessage(
			fmt.Sprintf("truncated payload: %d of %d bytes", n, size),
		)
	case n > size:
		return "", nil, status.ErrCorruptObject.WrapMessage("trailing data after payload")
	}

	return kind, payload.Bytes(), nil
}
