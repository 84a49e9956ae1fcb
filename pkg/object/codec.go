package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Codec names the compression applied to stored envelopes.
type Codec string

const (
	CodecZlib Codec = "zlib"
	CodecZstd Codec = "zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ParseCodec maps a config value to a Codec. The empty string selects zlib.
func ParseCodec(name string) (Codec, error) {
	switch Codec(name) {
	case "", CodecZlib:
		return CodecZlib, nil
	case CodecZstd:
		return CodecZstd, nil
	}
	return "", fmt.Errorf("unknown compression %q (want zlib or zstd)", name)
}

// compress encodes raw with the codec.
func (c Codec) compress(raw []byte) ([]byte, error) {
	switch c {
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// decompress sniffs the frame header so objects written with either codec
// stay readable after the repository's compression setting changes.
func decompress(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	}
	if !isZlibHeader(data) {
		return nil, fmt.Errorf("unrecognized compression header")
	}
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// isZlibHeader checks the RFC 1950 CMF/FLG pair.
func isZlibHeader(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	cmf, flg := data[0], data[1]
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
