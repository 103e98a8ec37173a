package tmx

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// Walk visits layers depth-first in document order, groups before their
// children. parents lists the enclosing groups, outermost first.
func Walk(layers []Layer, visitor func(layer Layer, parents []*GroupLayer) error) error {
	var traverse func([]Layer, []*GroupLayer) error
	traverse = func(layers []Layer, parents []*GroupLayer) error {
		for _, layer := range layers {
			if err := visitor(layer, parents); err != nil {
				return err
			}
			if group, ok := layer.(*GroupLayer); ok {
				if err := traverse(group.Layers, append(parents[:len(parents):len(parents)], group)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return traverse(layers, nil)
}

// IterLayers returns an iterator over all layers in Walk order.
func IterLayers(layers []Layer) iter.Seq[Layer] {
	return func(yield func(Layer) bool) {
		err := Walk(layers, func(layer Layer, _ []*GroupLayer) error {
			if !yield(layer) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

// IterCells returns an iterator over the cells of every tile layer.
func IterCells(layers []Layer) iter.Seq2[*TileLayer, Cell] {
	return func(yield func(*TileLayer, Cell) bool) {
		for layer := range IterLayers(layers) {
			tiles, ok := layer.(*TileLayer)
			if !ok {
				continue
			}
			for _, cell := range tiles.Cells {
				if !yield(tiles, cell) {
					return
				}
			}
		}
	}
}

// TileLayers returns an iterator over the tile layers of the map.
func (m *Map) TileLayers() iter.Seq[*TileLayer] {
	return func(yield func(*TileLayer) bool) {
		for layer := range IterLayers(m.Layers) {
			if tiles, ok := layer.(*TileLayer); ok && !yield(tiles) {
				return
			}
		}
	}
}
