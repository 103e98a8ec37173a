package spec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Encoding uint8

const (
	EncodingUnknown Encoding = iota
	EncodingNone             // one <tile gid="..."/> element per cell
	EncodingCSV
	EncodingBase64
)

func (e Encoding) String() string {
	switch e {
	case EncodingNone:
		return "none"
	case EncodingCSV:
		return "csv"
	case EncodingBase64:
		return "base64"
	}
	return fmt.Sprintf("unknown(%d)", uint8(e))
}

func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "":
		return EncodingNone, nil
	case "csv":
		return EncodingCSV, nil
	case "base64":
		return EncodingBase64, nil
	}
	return EncodingUnknown, fmt.Errorf("%w: %q", ErrEncoding, s)
}

// Data is the content of a tile layer. Finite maps carry the grid inline,
// infinite maps split it into chunks.
type Data struct {
	Encoding    string     `xml:"encoding,attr"`
	Compression string     `xml:"compression,attr"`
	Text        string     `xml:",chardata"`
	Tiles       []DataTile `xml:"tile"`
	Chunks      []Chunk    `xml:"chunk"`
}

type DataTile struct {
	GID GID `xml:"gid,attr"`
}

// Chunk is a rectangular piece of an infinite layer. Its payload is decoded
// with the encoding and compression of the enclosing data element.
type Chunk struct {
	X      int        `xml:"x,attr"`
	Y      int        `xml:"y,attr"`
	Width  int        `xml:"width,attr"`
	Height int        `xml:"height,attr"`
	Text   string     `xml:",chardata"`
	Tiles  []DataTile `xml:"tile"`
}

// Format parses the encoding and compression attributes.
func (d *Data) Format() (Encoding, Compression, error) {
	encoding, err := ParseEncoding(d.Encoding)
	if err != nil {
		return EncodingUnknown, CompressionUnknown, fmt.Errorf("%w: %w", ErrLayerDecodeFailed, err)
	}
	if encoding != EncodingBase64 {
		return encoding, CompressionNone, nil
	}
	compression, err := ParseCompression(d.Compression)
	if err != nil {
		return EncodingUnknown, CompressionUnknown, fmt.Errorf("%w: %w", ErrLayerDecodeFailed, err)
	}
	return encoding, compression, nil
}

// DecodeData turns a payload into exactly width*height gids in row-major
// order. text is used by csv and base64, tiles by the unencoded form.
func DecodeData(encoding Encoding, compression Compression, text string, tiles []DataTile, width, height int) ([]GID, error) {
	count := width * height
	switch encoding {
	case EncodingNone:
		if len(tiles) != count {
			return nil, fmt.Errorf("%w: %w: got %d, want %d", ErrLayerDecodeFailed, ErrTileCount, len(tiles), count)
		}
		gids := make([]GID, count)
		for i, tile := range tiles {
			gids[i] = tile.GID
		}
		return gids, nil
	case EncodingCSV:
		return decodeCSV(text, count)
	case EncodingBase64:
		return decodeBase64(text, compression, count)
	}
	return nil, fmt.Errorf("%w: %w: %v", ErrLayerDecodeFailed, ErrEncoding, encoding)
}

func decodeCSV(text string, count int) ([]GID, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) != count {
		return nil, fmt.Errorf("%w: %w: got %d, want %d", ErrLayerDecodeFailed, ErrTileCount, len(tokens), count)
	}
	gids := make([]GID, count)
	for i, token := range tokens {
		v, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: token %d: %w", ErrLayerDecodeFailed, ErrCSVToken, i, err)
		}
		gids[i] = GID(v)
	}
	return gids, nil
}

func decodeBase64(text string, compression Compression, count int) ([]GID, error) {
	payload := strings.Join(strings.Fields(text), "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrLayerDecodeFailed, ErrBase64, err)
	}
	data, err = Decompress(data, compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrLayerDecodeFailed, ErrDecompress, err)
	}
	if len(data) != 4*count {
		return nil, fmt.Errorf("%w: %w: got %d bytes, want %d", ErrLayerDecodeFailed, ErrTileCount, len(data), 4*count)
	}
	gids := make([]GID, count)
	for i := range gids {
		gids[i] = GID(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return gids, nil
}

// EncodeData is the inverse of DecodeData for the text encodings.
func EncodeData(encoding Encoding, compression Compression, gids []GID, width int) (string, error) {
	switch encoding {
	case EncodingCSV:
		if width <= 0 || len(gids)%width != 0 {
			return "", fmt.Errorf("%w: %d gids do not fill rows of %d", ErrTileCount, len(gids), width)
		}
		var sb strings.Builder
		sb.WriteByte('\n')
		for i, gid := range gids {
			if i > 0 {
				sb.WriteByte(',')
				if i%width == 0 {
					sb.WriteByte('\n')
				}
			}
			sb.WriteString(strconv.FormatUint(uint64(gid), 10))
		}
		sb.WriteByte('\n')
		return sb.String(), nil
	case EncodingBase64:
		data := make([]byte, 4*len(gids))
		for i, gid := range gids {
			binary.LittleEndian.PutUint32(data[4*i:], uint32(gid))
		}
		compressed, err := Compress(data, compression)
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(compressed), nil
	}
	return "", fmt.Errorf("%w: cannot encode as text: %v", ErrEncoding, encoding)
}
