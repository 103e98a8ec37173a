// Package tmx imports Tiled maps. It resolves every external document a map
// refers to and produces a tree of layers placed on an output grid.
package tmx

import (
	"image"
	"image/color"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"golang.org/x/image/math/f64"
)

type Map struct {
	Source     string // path the map was read from
	Doc        *spec.Map
	Layout     Layout
	Background *color.NRGBA
	Tilesets   Tilesets
	Layers     []Layer
	Properties spec.Properties
	Report     Report
}

// Layer is one of *TileLayer, *ObjectLayer, *ImageLayer or *GroupLayer.
type Layer interface {
	Info() *LayerInfo
	isLayer()
}

type LayerInfo struct {
	ID         int
	Name       string
	Class      string
	Offset     f64.Vec2 // in output units, relative to the parent
	Parallax   f64.Vec2
	Opacity    float64
	Visible    bool
	Tint       *color.NRGBA
	Properties spec.Properties
}

func (i *LayerInfo) Info() *LayerInfo {
	return i
}

type TileLayer struct {
	LayerInfo
	Width  int // zero for infinite maps
	Height int
	Cells  []Cell

	index map[image.Point]int
}

// Cell is a non-empty tile of a tile layer.
type Cell struct {
	Col int // editor column
	Row int // editor row
	Pos image.Point
	TileRef
}

type ObjectLayer struct {
	LayerInfo
	Color     color.NRGBA
	DrawOrder string
	Objects   []Object
}

// Object is a map object after template merge and defaults.
type Object struct {
	spec.Object
	Position f64.Vec2   // output position of the object origin
	Points   []f64.Vec2 // polygon or polyline vertices relative to Position
	Tile     *TileRef   // nil unless the object shows a tile
}

type ImageLayer struct {
	LayerInfo
	Image   *ImageRef
	RepeatX bool
	RepeatY bool
}

type GroupLayer struct {
	LayerInfo
	Layers []Layer
}

func (*TileLayer) isLayer()   {}
func (*ObjectLayer) isLayer() {}
func (*ImageLayer) isLayer()  {}
func (*GroupLayer) isLayer()  {}

// At returns the cell placed at an output grid position.
func (l *TileLayer) At(pos image.Point) (Cell, bool) {
	i, ok := l.index[pos]
	if !ok {
		return Cell{}, false
	}
	return l.Cells[i], true
}

// Bounds returns the smallest rectangle of output positions holding every
// cell.
func (l *TileLayer) Bounds() image.Rectangle {
	var bounds image.Rectangle
	for i, cell := range l.Cells {
		r := image.Rectangle{cell.Pos, cell.Pos.Add(image.Pt(1, 1))}
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}
	return bounds
}

func (l *TileLayer) buildIndex() {
	l.index = make(map[image.Point]int, len(l.Cells))
	for i, cell := range l.Cells {
		l.index[cell.Pos] = i
	}
}
