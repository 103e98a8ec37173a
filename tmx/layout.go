package tmx

import (
	"fmt"
	"image"
	"strings"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"golang.org/x/image/math/f64"
)

type Orientation uint8

const (
	OrientationOrthogonal Orientation = iota
	OrientationIsometric
	OrientationHexagonal
)

func (o Orientation) String() string {
	switch o {
	case OrientationOrthogonal:
		return "orthogonal"
	case OrientationIsometric:
		return "isometric"
	case OrientationHexagonal:
		return "hexagonal"
	}
	return fmt.Sprintf("unknown(%d)", uint8(o))
}

type StaggerAxis uint8

const (
	StaggerAxisX StaggerAxis = iota
	StaggerAxisY
)

func (a StaggerAxis) String() string {
	if a == StaggerAxisX {
		return "x"
	}
	return "y"
}

// SortOrder is the corner of the grid that is drawn first.
type SortOrder uint8

const (
	SortTopLeft SortOrder = iota
	SortTopRight
	SortBottomLeft
	SortBottomRight
)

func (s SortOrder) String() string {
	switch s {
	case SortTopLeft:
		return "top-left"
	case SortTopRight:
		return "top-right"
	case SortBottomLeft:
		return "bottom-left"
	case SortBottomRight:
		return "bottom-right"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

type hexOffsets struct {
	grid     image.Point
	position f64.Vec2 // in cell units
}

// hexTable is indexed by stagger axis and whether odd rows (or columns)
// have to be remapped to even ones.
var hexTable = [2][2]hexOffsets{
	StaggerAxisX: {
		{grid: image.Pt(1, 0), position: f64.Vec2{-0.25, -0.5}},
		{grid: image.Pt(1, 0), position: f64.Vec2{-0.25, 0}},
	},
	StaggerAxisY: {
		{grid: image.Pt(0, 0), position: f64.Vec2{0.5, 0.25}},
		{grid: image.Pt(0, 1), position: f64.Vec2{0.5, 1}},
	},
}

// Layout maps editor coordinates to output coordinates. The output grid has
// y pointing up; a cell is CellSize units large where one unit is one tile
// width.
type Layout struct {
	Orientation Orientation
	StaggerAxis StaggerAxis
	OddToEven   bool
	TileWidth   int
	TileHeight  int
	CellSize    f64.Vec2
	GridOffset  image.Point
	SortOrder   SortOrder

	positionFactor f64.Vec2
}

func NewLayout(m *spec.Map) (Layout, error) {
	l := Layout{
		TileWidth:  m.TileWidth,
		TileHeight: m.TileHeight,
		CellSize:   f64.Vec2{1, 1},
		SortOrder:  sortOrder(m.RenderOrder),
	}
	if l.TileWidth <= 0 || l.TileHeight <= 0 {
		return Layout{}, fmt.Errorf("%w: tile size %dx%d", ErrMalformedDocument, l.TileWidth, l.TileHeight)
	}
	aspect := float64(m.TileHeight) / float64(m.TileWidth)

	switch m.Orientation {
	case "orthogonal":
		l.Orientation = OrientationOrthogonal
	case "isometric":
		l.Orientation = OrientationIsometric
		l.CellSize[1] = aspect
		l.SortOrder = SortTopRight
	case "hexagonal":
		l.Orientation = OrientationHexagonal
		l.CellSize[1] = aspect
		l.StaggerAxis = StaggerAxisY
		if strings.EqualFold(m.StaggerAxis, "x") {
			l.StaggerAxis = StaggerAxisX
		}
		l.OddToEven = !strings.EqualFold(m.StaggerIndex, "even")
		offsets := hexTable[l.StaggerAxis][boolIndex(l.OddToEven)]
		l.GridOffset = offsets.grid
		l.positionFactor = offsets.position
	default:
		return Layout{}, fmt.Errorf("%w: %q", ErrUnsupportedOrientation, m.Orientation)
	}
	return l, nil
}

func sortOrder(renderOrder string) SortOrder {
	switch renderOrder {
	case "right-up":
		return SortBottomLeft
	case "left-down":
		return SortTopRight
	case "left-up":
		return SortBottomRight
	}
	return SortTopLeft
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PositionOffset is the translation of the whole grid in output units.
// It is non-zero only for hexagonal maps.
func (l Layout) PositionOffset() f64.Vec2 {
	return f64.Vec2{l.positionFactor[0] * l.CellSize[0], l.positionFactor[1] * l.CellSize[1]}
}

// Place converts an editor cell (column right, row down) to an output cell.
func (l Layout) Place(col, row int) image.Point {
	x := col + l.GridOffset.X
	y := -(row + l.GridOffset.Y + 1)
	switch {
	case l.Orientation == OrientationIsometric:
		x, y = y, -x
	case l.Orientation == OrientationHexagonal && l.StaggerAxis == StaggerAxisX:
		x, y = y, x
	}
	return image.Pt(x, y)
}

// LayerOffset converts a layer pixel offset to output units.
func (l Layout) LayerOffset(offsetX, offsetY float64) f64.Vec2 {
	return f64.Vec2{
		offsetX * l.CellSize[0] / float64(l.TileWidth),
		-offsetY * l.CellSize[1] / float64(l.TileHeight),
	}
}

// ObjectPosition converts an object pixel position to output units.
// Isometric objects are measured along the grid axes, in units of the tile
// height, and are projected onto the diamond.
func (l Layout) ObjectPosition(px, py float64) f64.Vec2 {
	if l.Orientation == OrientationIsometric {
		cx := px / float64(l.TileHeight)
		cy := py / float64(l.TileHeight)
		return f64.Vec2{(cx - cy) / 2, -(cx + cy) / 2 * l.CellSize[1]}
	}
	return f64.Vec2{px / float64(l.TileWidth), -py / float64(l.TileHeight)}
}

// ObjectPoint converts a polygon or polyline vertex, given relative to its
// object, to an output offset relative to the object position.
func (l Layout) ObjectPoint(p f64.Vec2) f64.Vec2 {
	return l.ObjectPosition(p[0], p[1])
}
