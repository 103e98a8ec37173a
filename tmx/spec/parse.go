// Package spec describes the TMX, TSX and TX document formats: the element
// tree as decoded from XML, and the pure transformations on it that do not
// need any other document (layer data decoding, gid flags, template merge).
package spec

import (
	"encoding/xml"
	"fmt"
)

func DecodeMap(data []byte) (*Map, error) {
	var m Map
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &m, nil
}

func DecodeTileset(data []byte) (*Tileset, error) {
	var doc struct {
		XMLName xml.Name `xml:"tileset"`
		Tileset
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &doc.Tileset, nil
}

func DecodeTemplate(data []byte) (*Template, error) {
	var t Template
	if err := xml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if t.Tileset != nil {
		if err := t.Tileset.validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	}
	return &t, nil
}

func (m *Map) validate() error {
	if m.Width < 0 || m.Height < 0 {
		return fmt.Errorf("<map>: negative size %dx%d", m.Width, m.Height)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return fmt.Errorf("<map>: invalid tile size %dx%d", m.TileWidth, m.TileHeight)
	}
	var prev GID
	for i := range m.Tilesets {
		ref := &m.Tilesets[i]
		if err := ref.validate(); err != nil {
			return err
		}
		if ref.FirstGID <= prev {
			return fmt.Errorf("<tileset firstgid=%d>: first gids must be strictly increasing", ref.FirstGID)
		}
		prev = ref.FirstGID
	}
	return nil
}

func (r *TilesetRef) validate() error {
	if r.FirstGID == 0 || r.FirstGID.Flags() != 0 {
		return fmt.Errorf("<tileset firstgid=%d>: invalid first gid", r.FirstGID)
	}
	if !r.IsExternal() && r.Name == "" && r.TileWidth == 0 && r.Image == nil && len(r.Tiles) == 0 {
		return fmt.Errorf("<tileset firstgid=%d>: neither source nor inline definition", r.FirstGID)
	}
	return nil
}
