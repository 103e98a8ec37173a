package scene

import (
	"cmp"
	"image"
	"slices"

	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/hilbert"
)

// Curve numbers the positions of a rectangle along a Hilbert curve, so that
// cells close on the grid get close row ids.
type Curve struct {
	bounds image.Rectangle
	h      *hilbert.Hilbert
}

func NewCurve(bounds image.Rectangle) (*Curve, error) {
	side := 1
	for side < max(bounds.Dx(), bounds.Dy()) {
		side <<= 1
	}
	h, err := hilbert.NewHilbert(side)
	if err != nil {
		return nil, err
	}
	return &Curve{bounds: bounds, h: h}, nil
}

func (c *Curve) Encode(p image.Point) (int64, error) {
	q := p.Sub(c.bounds.Min)
	code, err := c.h.MapInverse(q.X, q.Y)
	return int64(code), err
}

func (c *Curve) Decode(code int64) (image.Point, error) {
	x, y, err := c.h.Map(int(code))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(x, y).Add(c.bounds.Min), nil
}

type orderedCell struct {
	code int64
	cell tmx.Cell
}

// hilbertOrder returns the cells of a layer sorted by curve position.
func hilbertOrder(layer *tmx.TileLayer) ([]orderedCell, error) {
	curve, err := NewCurve(layer.Bounds())
	if err != nil {
		return nil, err
	}
	ordered := make([]orderedCell, len(layer.Cells))
	for i, cell := range layer.Cells {
		code, err := curve.Encode(cell.Pos)
		if err != nil {
			return nil, err
		}
		ordered[i] = orderedCell{code: code, cell: cell}
	}
	slices.SortFunc(ordered, func(a, b orderedCell) int {
		return cmp.Compare(a.code, b.code)
	})
	return ordered, nil
}
