package spec

import "errors"

var ErrMalformedDocument = errors.New("malformed document")
var ErrLayerDecodeFailed = errors.New("layer decode failed")
var ErrNestedTemplateUnsupported = errors.New("nested template unsupported")

// Decoding stages, wrapped together with ErrLayerDecodeFailed.
var (
	ErrEncoding    = errors.New("unsupported encoding")
	ErrCompression = errors.New("unsupported compression")
	ErrBase64      = errors.New("invalid base64 payload")
	ErrDecompress  = errors.New("decompression failed")
	ErrCSVToken    = errors.New("invalid csv token")
	ErrTileCount   = errors.New("tile count mismatch")
)
