package tmx

import (
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/eak1mov/go-libtmx/tmx/spec"
)

// Tileset is a tileset with every tile's image region computed and the
// per-tile data of the definition attached.
type Tileset struct {
	FirstGID        GID
	Source          string // path of the TSX document, empty when embedded
	Name            string
	Class           string
	TileWidth       int
	TileHeight      int
	Spacing         int
	Margin          int
	Columns         int
	Offset          image.Point
	ObjectAlignment string
	Image           *ImageRef // nil for image collections
	Properties      spec.Properties

	// Tiles is indexed by local id. Collections may leave holes (nil).
	Tiles []*TileRecord
}

type TileRecord struct {
	ID          int
	Type        string
	Probability float64
	Image       ImageRef
	Collision   []spec.Object
	Animation   []Frame
	Properties  spec.Properties
}

type ImageRef struct {
	Source string          // resolved path
	Size   image.Point     // size of the whole image file
	Rect   image.Rectangle // region used by the tile
	Trans  string
}

type Frame struct {
	TileID   int
	Duration time.Duration
}

func (ts *Tileset) Count() int {
	return len(ts.Tiles)
}

func (ts *Tileset) IsCollection() bool {
	return ts.Image == nil
}

// Tile returns the record for a local id, or nil when there is none.
func (ts *Tileset) Tile(localID int) *TileRecord {
	if localID < 0 || localID >= len(ts.Tiles) {
		return nil
	}
	return ts.Tiles[localID]
}

// TileCount returns how many local ids a tileset definition covers. A
// declared tilecount wins for single-image tilesets, the image geometry is
// the fallback. For collections it is the larger of tilecount and the
// highest tile id + 1.
func TileCount(def *spec.Tileset) int {
	if def.IsCollection() {
		count := def.TileCount
		for _, tile := range def.Tiles {
			count = max(count, tile.ID+1)
		}
		return count
	}
	if def.TileCount > 0 {
		return def.TileCount
	}
	across, down := tileGrid(def)
	return across * down
}

// tileGrid is the number of whole tiles across and down the image.
func tileGrid(def *spec.Tileset) (across, down int) {
	if def.Image.Width <= 0 || def.Image.Height <= 0 {
		return 0, 0
	}
	across = (def.Image.Width + def.Spacing - 2*def.Margin) / (def.Spacing + def.TileWidth)
	down = (def.Image.Height + def.Spacing - 2*def.Margin) / (def.Spacing + def.TileHeight)
	return max(across, 0), max(down, 0)
}

// BuildTileset computes the tile table of a tileset definition. Image
// sources are resolved against the document at docPath.
func BuildTileset(def *spec.Tileset, firstGID GID, docPath string) (*Tileset, error) {
	if def.TileWidth <= 0 || def.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: %q: invalid tile size %dx%d", ErrTilesetLoadFailed, def.Name, def.TileWidth, def.TileHeight)
	}

	ts := &Tileset{
		FirstGID:        firstGID,
		Name:            def.Name,
		Class:           def.Class,
		TileWidth:       def.TileWidth,
		TileHeight:      def.TileHeight,
		Spacing:         def.Spacing,
		Margin:          def.Margin,
		Columns:         def.Columns,
		Offset:          image.Pt(def.TileOffset.X, def.TileOffset.Y),
		ObjectAlignment: def.ObjectAlignment,
		Properties:      def.Properties,
		Tiles:           make([]*TileRecord, TileCount(def)),
	}

	if def.IsCollection() {
		for _, tile := range def.Tiles {
			if tile.ID < 0 {
				return nil, fmt.Errorf("%w: %q: negative tile id %d", ErrTilesetLoadFailed, def.Name, tile.ID)
			}
			if tile.Image == nil {
				continue
			}
			ref := newImageRef(tile.Image, docPath)
			if tile.Width > 0 && tile.Height > 0 {
				ref.Rect = image.Rect(tile.X, tile.Y, tile.X+tile.Width, tile.Y+tile.Height)
			}
			ts.Tiles[tile.ID] = &TileRecord{ID: tile.ID, Image: ref}
		}
	} else {
		sheet := newImageRef(def.Image, docPath)
		ts.Image = &sheet
		across, _ := tileGrid(def)
		if ts.Columns <= 0 {
			ts.Columns = across
		}
		for id := range ts.Tiles {
			ref := sheet
			if ts.Columns > 0 {
				ref.Rect = ts.tileRect(id)
			}
			ts.Tiles[id] = &TileRecord{ID: id, Probability: 1, Image: ref}
		}
	}

	for _, tile := range def.Tiles {
		record := ts.Tile(tile.ID)
		if record == nil {
			// Collection tiles without an image still carry data.
			if !def.IsCollection() || tile.ID < 0 {
				continue
			}
			record = &TileRecord{ID: tile.ID}
			ts.Tiles[tile.ID] = record
		}
		record.Type = tile.TypeName()
		record.Probability = tile.Probability
		record.Properties = tile.Properties
		for _, frame := range tile.Animation {
			record.Animation = append(record.Animation, Frame{
				TileID:   frame.TileID,
				Duration: time.Duration(frame.Duration) * time.Millisecond,
			})
		}
		if tile.ObjectGroup != nil {
			for _, obj := range tile.ObjectGroup.Objects {
				obj = obj.Clone()
				obj.ApplyDefaults()
				record.Collision = append(record.Collision, obj)
			}
		}
	}

	return ts, nil
}

// tileRect is the pixel region of a local id in a single-image tileset.
func (ts *Tileset) tileRect(id int) image.Rectangle {
	col, row := id%ts.Columns, id/ts.Columns
	x := ts.Margin + col*(ts.TileWidth+ts.Spacing)
	y := ts.Margin + row*(ts.TileHeight+ts.Spacing)
	return image.Rect(x, y, x+ts.TileWidth, y+ts.TileHeight)
}

func newImageRef(img *spec.Image, docPath string) ImageRef {
	return ImageRef{
		Source: resolvePath(docPath, img.Source),
		Size:   image.Pt(img.Width, img.Height),
		Rect:   image.Rect(0, 0, img.Width, img.Height),
		Trans:  img.Trans,
	}
}

// Tilesets are the tilesets of one map, ordered by first gid.
type Tilesets []*Tileset

// Find returns the tileset whose gid range contains id: the one with the
// largest first gid not greater than id.
func (ts Tilesets) Find(id uint32) (*Tileset, bool) {
	idx := sort.Search(len(ts), func(i int) bool {
		return uint32(ts[i].FirstGID) > id
	})
	if idx == 0 {
		return nil, false
	}
	return ts[idx-1], true
}

// TileRef is a resolved gid: the tile it names and how to draw it in a
// cell of the given size.
type TileRef struct {
	GID       GID
	Tileset   *Tileset
	Tile      *TileRecord
	Transform Transform
	Offset    image.Point // pixel offset of the tile image from the cell origin
}

func (r *TileRef) IsEmpty() bool {
	return r.Tile == nil
}

// Resolve maps a gid to its tile. The empty gid resolves to an empty
// TileRef with the identity transform.
func (ts Tilesets) Resolve(gid GID, cellWidth, cellHeight int) (TileRef, error) {
	id := gid.ID()
	if id == 0 {
		return TileRef{}, nil
	}
	tileset, ok := ts.Find(id)
	if !ok {
		return TileRef{}, fmt.Errorf("%w: gid %d is below every first gid", ErrUnresolvedTileReference, id)
	}
	localID := int(id - uint32(tileset.FirstGID))
	tile := tileset.Tile(localID)
	if tile == nil {
		return TileRef{}, fmt.Errorf("%w: gid %d: tileset %q has no tile %d", ErrUnresolvedTileReference, id, tileset.Name, localID)
	}
	return TileRef{
		GID:       gid,
		Tileset:   tileset,
		Tile:      tile,
		Transform: gid.Transform(),
		Offset:    tileset.Offset.Add(align(tileset.ObjectAlignment, tile.Image.Rect.Size(), cellWidth, cellHeight)),
	}, nil
}

// align places an image of the given size inside a cell. Unspecified
// alignment is bottom-left.
func align(alignment string, size image.Point, cellWidth, cellHeight int) image.Point {
	var p image.Point
	switch alignment {
	case "top", "center", "bottom":
		p.X = (cellWidth - size.X) / 2
	case "topright", "right", "bottomright":
		p.X = cellWidth - size.X
	}
	switch alignment {
	case "topleft", "top", "topright":
		p.Y = 0
	case "left", "center", "right":
		p.Y = (cellHeight - size.Y) / 2
	default:
		p.Y = cellHeight - size.Y
	}
	return p
}
