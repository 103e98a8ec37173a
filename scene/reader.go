// Package scene stores imported maps in a SQLite database: tilesets, the
// layer tree, tile cells in Hilbert order within each layer, objects and
// custom properties.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package scene

import (
	"database/sql"
	"fmt"
	"image"

	"github.com/eak1mov/go-libtmx/tmx/spec"
)

type Reader struct {
	db *sql.DB
}

type LayerRecord struct {
	ID       int64
	ParentID int64 // zero for top-level layers
	Kind     string
	Name     string
	Bounds   image.Rectangle // tile layers only
}

type CellRecord struct {
	LayerID   int64
	Hilbert   int64
	Pos       image.Point
	Col       int
	Row       int
	TilesetID int
	TileID    int
	GID       spec.GID
}

// NewReader opens a database created by Writer.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

func (r *Reader) ReadLayers() ([]LayerRecord, error) {
	rows, err := r.db.Query("SELECT layer_id, parent_id, kind, name, min_x, min_y, max_x, max_y FROM layers ORDER BY layer_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layers []LayerRecord
	for rows.Next() {
		var l LayerRecord
		b := &l.Bounds
		if err := rows.Scan(&l.ID, &l.ParentID, &l.Kind, &l.Name, &b.Min.X, &b.Min.Y, &b.Max.X, &b.Max.Y); err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return layers, nil
}

// VisitCells calls visitor for every cell, layer by layer in curve order.
func (r *Reader) VisitCells(visitor func(CellRecord) error) error {
	rows, err := r.db.Query("SELECT layer_id, hilbert, x, y, col, row, tileset_id, tile_id, gid FROM cells ORDER BY layer_id, hilbert")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CellRecord
		var gid int64
		if err := rows.Scan(&c.LayerID, &c.Hilbert, &c.Pos.X, &c.Pos.Y, &c.Col, &c.Row, &c.TilesetID, &c.TileID, &gid); err != nil {
			return err
		}
		c.GID = spec.GID(gid)

		if err := visitor(c); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return err
	}

	return nil
}

func (r *Reader) CountObjects() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM objects").Scan(&count)
	return count, err
}

// ReadProperties returns the properties of the map (owner "map", id 0), a
// layer or an object row.
func (r *Reader) ReadProperties(owner string, ownerID int64) (spec.Properties, error) {
	rows, err := r.db.Query("SELECT name, type, value FROM properties WHERE owner = ? AND owner_id = ? ORDER BY rowid", owner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props spec.Properties
	for rows.Next() {
		var p spec.Property
		if err := rows.Scan(&p.Name, &p.Type, &p.Value); err != nil {
			return nil, err
		}
		props = append(props, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return props, nil
}
