package scene

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/eak1mov/go-libtmx/tmx/spec"
)

// Writer stores imported maps in a SQLite database.
type Writer struct {
	db       *sql.DB
	logger   *slog.Logger
	metadata map[string]string
	progress func(cells int)
}

type writerConfig struct {
	Metadata map[string]string
	Logger   *slog.Logger
	Progress func(cells int)
}

type WriterOption func(*writerConfig)

func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { c.Metadata = metadata }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// WithProgress sets a function called with the number of cells written
// after each tile layer.
func WithProgress(progress func(cells int)) WriterOption {
	return func(c *writerConfig) { c.Progress = progress }
}

const schema = `
	CREATE TABLE metadata (name TEXT, value TEXT);
	CREATE TABLE tilesets (
		tileset_id INTEGER PRIMARY KEY,
		first_gid INTEGER,
		name TEXT,
		source TEXT,
		tile_width INTEGER,
		tile_height INTEGER,
		columns INTEGER,
		tile_count INTEGER
	);
	CREATE TABLE tiles (
		tileset_id INTEGER,
		tile_id INTEGER,
		type TEXT,
		image TEXT,
		x INTEGER,
		y INTEGER,
		width INTEGER,
		height INTEGER
	);
	CREATE TABLE layers (
		layer_id INTEGER PRIMARY KEY,
		parent_id INTEGER,
		kind TEXT,
		name TEXT,
		offset_x REAL,
		offset_y REAL,
		opacity REAL,
		visible INTEGER,
		min_x INTEGER,
		min_y INTEGER,
		max_x INTEGER,
		max_y INTEGER
	);
	CREATE TABLE cells (
		layer_id INTEGER,
		hilbert INTEGER,
		x INTEGER,
		y INTEGER,
		col INTEGER,
		row INTEGER,
		tileset_id INTEGER,
		tile_id INTEGER,
		gid INTEGER
	);
	CREATE TABLE objects (
		object_rowid INTEGER PRIMARY KEY,
		layer_id INTEGER,
		object_id INTEGER,
		name TEXT,
		type TEXT,
		shape TEXT,
		x REAL,
		y REAL,
		width REAL,
		height REAL,
		rotation REAL,
		visible INTEGER,
		tileset_id INTEGER,
		tile_id INTEGER,
		gid INTEGER
	);
	CREATE TABLE properties (owner TEXT, owner_id INTEGER, name TEXT, type TEXT, value TEXT);
`

// NewWriter creates a new database file and its tables.
func NewWriter(filePath string, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		Logger:   slog.New(slog.DiscardHandler),
		Progress: func(int) {},
	}
	for _, opt := range opts {
		opt(&config)
	}

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return &Writer{db: db, logger: config.Logger, metadata: config.Metadata, progress: config.Progress}, nil
}

func (w *Writer) Close() error {
	return w.db.Close()
}

// WriteMap stores one map in a single transaction.
func (w *Writer) WriteMap(m *tmx.Map) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	mw := &mapWriter{tx: tx, tilesetIDs: make(map[*tmx.Tileset]int), progress: w.progress}
	if err := mw.write(m, w.metadata); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	w.logger.Debug("scene: wrote map", "source", m.Source, "layers", mw.layers, "cells", mw.cells)
	return tx.Commit()
}

func (w *Writer) Finalize() error {
	w.logger.Debug("scene: creating indexes")
	_, err := w.db.Exec(`
		CREATE INDEX cell_index ON cells (layer_id, hilbert);
		CREATE INDEX property_index ON properties (owner, owner_id);
	`)
	return err
}

type mapWriter struct {
	tx         *sql.Tx
	tilesetIDs map[*tmx.Tileset]int
	progress   func(int)
	layers     int
	cells      int
}

func (mw *mapWriter) write(m *tmx.Map, extra map[string]string) error {
	metadata := map[string]string{
		"source":      m.Source,
		"orientation": m.Layout.Orientation.String(),
		"tile_width":  strconv.Itoa(m.Layout.TileWidth),
		"tile_height": strconv.Itoa(m.Layout.TileHeight),
		"sort_order":  m.Layout.SortOrder.String(),
		"infinite":    strconv.FormatBool(m.Doc.Infinite),
	}
	// Cells are stored on the shifted grid; readers add the position
	// offset to every cell to place it.
	offset := m.Layout.PositionOffset()
	metadata["position_offset_x"] = strconv.FormatFloat(offset[0], 'g', -1, 64)
	metadata["position_offset_y"] = strconv.FormatFloat(offset[1], 'g', -1, 64)
	if m.Layout.Orientation == tmx.OrientationHexagonal {
		metadata["stagger_axis"] = m.Layout.StaggerAxis.String()
		metadata["stagger_index"] = "even"
		if m.Layout.OddToEven {
			metadata["stagger_index"] = "odd"
		}
	}
	for k, v := range extra {
		metadata[k] = v
	}
	for k, v := range metadata {
		if _, err := mw.tx.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v); err != nil {
			return err
		}
	}
	if err := mw.writeProperties("map", 0, m.Properties); err != nil {
		return err
	}

	for i, ts := range m.Tilesets {
		if err := mw.writeTileset(i, ts); err != nil {
			return fmt.Errorf("tileset %q: %w", ts.Name, err)
		}
	}

	layerIDs := make(map[tmx.Layer]int64)
	return tmx.Walk(m.Layers, func(layer tmx.Layer, parents []*tmx.GroupLayer) error {
		var parentID int64
		if len(parents) > 0 {
			parentID = layerIDs[parents[len(parents)-1]]
		}
		id, err := mw.writeLayer(layer, parentID)
		if err != nil {
			return fmt.Errorf("layer %q: %w", layer.Info().Name, err)
		}
		layerIDs[layer] = id
		return nil
	})
}

func (mw *mapWriter) writeTileset(id int, ts *tmx.Tileset) error {
	mw.tilesetIDs[ts] = id
	_, err := mw.tx.Exec(
		"INSERT INTO tilesets (tileset_id, first_gid, name, source, tile_width, tile_height, columns, tile_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, int64(ts.FirstGID), ts.Name, ts.Source, ts.TileWidth, ts.TileHeight, ts.Columns, ts.Count())
	if err != nil {
		return err
	}
	stmt, err := mw.tx.Prepare("INSERT INTO tiles (tileset_id, tile_id, type, image, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tile := range ts.Tiles {
		if tile == nil {
			continue
		}
		r := tile.Image.Rect
		if _, err := stmt.Exec(id, tile.ID, tile.Type, tile.Image.Source, r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
			return err
		}
	}
	return nil
}

func layerKind(layer tmx.Layer) string {
	switch layer.(type) {
	case *tmx.TileLayer:
		return "tiles"
	case *tmx.ObjectLayer:
		return "objects"
	case *tmx.ImageLayer:
		return "image"
	case *tmx.GroupLayer:
		return "group"
	}
	return "unknown"
}

func (mw *mapWriter) writeLayer(layer tmx.Layer, parentID int64) (int64, error) {
	info := layer.Info()
	tiles, _ := layer.(*tmx.TileLayer)
	var bounds [4]int
	if tiles != nil {
		b := tiles.Bounds()
		bounds = [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y}
	}
	result, err := mw.tx.Exec(
		"INSERT INTO layers (parent_id, kind, name, offset_x, offset_y, opacity, visible, min_x, min_y, max_x, max_y) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		parentID, layerKind(layer), info.Name, info.Offset[0], info.Offset[1], info.Opacity, info.Visible,
		bounds[0], bounds[1], bounds[2], bounds[3])
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	mw.layers++
	if err := mw.writeProperties("layer", id, info.Properties); err != nil {
		return 0, err
	}

	switch l := layer.(type) {
	case *tmx.TileLayer:
		err = mw.writeCells(id, l)
	case *tmx.ObjectLayer:
		err = mw.writeObjects(id, l)
	}
	return id, err
}

func (mw *mapWriter) writeCells(layerID int64, layer *tmx.TileLayer) error {
	ordered, err := hilbertOrder(layer)
	if err != nil {
		return err
	}
	stmt, err := mw.tx.Prepare("INSERT INTO cells (layer_id, hilbert, x, y, col, row, tileset_id, tile_id, gid) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, oc := range ordered {
		c := oc.cell
		_, err := stmt.Exec(layerID, oc.code, c.Pos.X, c.Pos.Y, c.Col, c.Row, mw.tilesetIDs[c.Tileset], c.Tile.ID, int64(c.GID))
		if err != nil {
			return err
		}
	}
	mw.cells += len(ordered)
	mw.progress(len(ordered))
	return nil
}

func (mw *mapWriter) writeObjects(layerID int64, layer *tmx.ObjectLayer) error {
	for _, obj := range layer.Objects {
		tilesetID, tileID := sql.NullInt64{}, sql.NullInt64{}
		if obj.Tile != nil {
			id, ok := mw.tilesetIDs[obj.Tile.Tileset]
			if !ok {
				// Template tilesets are not part of the map; store them too.
				id = len(mw.tilesetIDs)
				if err := mw.writeTileset(id, obj.Tile.Tileset); err != nil {
					return err
				}
			}
			tilesetID = sql.NullInt64{Int64: int64(id), Valid: true}
			tileID = sql.NullInt64{Int64: int64(obj.Tile.Tile.ID), Valid: true}
		}
		result, err := mw.tx.Exec(
			"INSERT INTO objects (layer_id, object_id, name, type, shape, x, y, width, height, rotation, visible, tileset_id, tile_id, gid) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			layerID, obj.ID.Value(), obj.Name.Value(), obj.TypeName(), obj.Shape().String(),
			obj.Position[0], obj.Position[1], obj.Width.Value(), obj.Height.Value(), obj.Rotation.Value(),
			obj.Visible.Value(), tilesetID, tileID, int64(obj.GID.Value()))
		if err != nil {
			return err
		}
		rowID, err := result.LastInsertId()
		if err != nil {
			return err
		}
		if err := mw.writeProperties("object", rowID, obj.Properties); err != nil {
			return err
		}
	}
	return nil
}

func (mw *mapWriter) writeProperties(owner string, ownerID int64, props spec.Properties) error {
	for _, p := range props {
		_, err := mw.tx.Exec("INSERT INTO properties (owner, owner_id, name, type, value) VALUES (?, ?, ?, ?, ?)",
			owner, ownerID, p.Name, p.Type, p.Value)
		if err != nil {
			return err
		}
	}
	return nil
}
