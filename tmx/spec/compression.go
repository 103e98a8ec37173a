package spec

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

type Compression uint8

const (
	CompressionUnknown Compression = iota
	CompressionNone
	CompressionZlib
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// ParseCompression maps the compression attribute of a data element.
// An empty attribute means the payload is not compressed.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "":
		return CompressionNone, nil
	case "zlib":
		return CompressionZlib, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	}
	return CompressionUnknown, fmt.Errorf("%w: %q", ErrCompression, s)
}

func Compress(data []byte, compression Compression) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}

	var buffer bytes.Buffer
	var writer io.WriteCloser
	switch compression {
	case CompressionZlib:
		writer, _ = zlib.NewWriterLevel(&buffer, zlib.BestCompression)
	case CompressionGzip:
		writer, _ = gzip.NewWriterLevel(&buffer, gzip.BestCompression)
	case CompressionZstd:
		encoder, err := zstd.NewWriter(&buffer)
		if err != nil {
			return nil, fmt.Errorf("failed to compress: %w", err)
		}
		writer = encoder
	default:
		return nil, fmt.Errorf("compression not supported (%v)", compression)
	}

	_, err := writer.Write(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	return buffer.Bytes(), nil
}

func Decompress(data []byte, compression Compression) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}

	var reader io.ReadCloser
	var err error
	switch compression {
	case CompressionZlib:
		reader, err = zlib.NewReader(bytes.NewReader(data))
	case CompressionGzip:
		reader, err = gzip.NewReader(bytes.NewReader(data))
	case CompressionZstd:
		var decoder *zstd.Decoder
		decoder, err = zstd.NewReader(bytes.NewReader(data))
		if err == nil {
			reader = decoder.IOReadCloser()
		}
	default:
		return nil, fmt.Errorf("compression not supported (%v)", compression)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	defer reader.Close()

	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	return result, nil
}
