package anvil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression is the scheme a chunk payload in a region file is stored with.
type Compression byte

const (
	CompressionGZip   Compression = 1
	CompressionZlib   Compression = 2
	CompressionNone   Compression = 3
	CompressionLZ4    Compression = 4
	CompressionCustom Compression = 127

	// externalFlag is set on the compression byte when the payload is stored in a separate .mcc
	// file because it did not fit in 255 sectors.
	externalFlag = 0x80
)

// ErrUnsupportedCompression is returned for chunk payloads compressed with a scheme that cannot
// be read.
var ErrUnsupportedCompression = errors.New("unsupported chunk compression")

func (c Compression) String() string {
	switch c {
	case CompressionGZip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionCustom:
		return "custom"
	}
	return fmt.Sprintf("unknown(%d)", byte(c))
}

// decompress returns the raw NBT bytes of a chunk payload.
func (c Compression) decompress(data []byte) ([]byte, error) {
	var r io.ReadCloser
	var err error
	switch c {
	case CompressionGZip:
		r, err = gzip.NewReader(bytes.NewReader(data))
	case CompressionZlib:
		r, err = zlib.NewReader(bytes.NewReader(data))
	case CompressionNone:
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, c)
	}
	if err != nil {
		return nil, fmt.Errorf("open %v stream: %w", c, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %v stream: %w", c, err)
	}
	return b, nil
}
