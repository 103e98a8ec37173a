package tmx

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"golang.org/x/sync/errgroup"
)

// Importer reads maps and the documents they refer to through a ReadFunc.
// It holds no state between imports and is safe for concurrent use.
type Importer struct {
	read   ReadFunc
	config config
}

func NewImporter(read ReadFunc, opts ...Option) *Importer {
	config := config{
		Logger:      slog.New(slog.DiscardHandler),
		Concurrency: 1,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Importer{read: read, config: config}
}

// ImportFile imports a map from the local file system.
func ImportFile(filePath string, opts ...Option) (*Map, error) {
	return NewImporter(FromDir(filepath.Dir(filePath)), opts...).Import(filepath.Base(filePath))
}

// Import reads the map at mapPath and everything it refers to. Tilesets and
// templates are loaded once per call.
func (imp *Importer) Import(mapPath string) (*Map, error) {
	data, err := imp.read(mapPath)
	if err != nil {
		return nil, fmt.Errorf("tmx: read %s: %w", mapPath, err)
	}
	doc, err := spec.DecodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("tmx: %s: %w", mapPath, err)
	}

	s := &session{
		config:    imp.config,
		read:      imp.read,
		mapPath:   mapPath,
		doc:       doc,
		tilesets:  make(map[string]*spec.Tileset),
		templates: make(map[string]*Template),
	}
	m, err := s.run()
	if err != nil {
		return nil, fmt.Errorf("tmx: %s: %w", mapPath, err)
	}
	return m, nil
}

// session is the state of a single Import call.
type session struct {
	config
	read    ReadFunc
	mapPath string
	doc     *spec.Map
	layout  Layout
	sets    Tilesets

	tilesets  map[string]*spec.Tileset // parsed TSX documents by path
	templates map[string]*Template     // loaded TX documents by path
	warnings  []Warning
	jobs      []decodeJob
}

// decodeJob fills the cells of one tile layer.
type decodeJob func() ([]Warning, error)

func (s *session) run() (*Map, error) {
	var err error
	s.layout, err = NewLayout(s.doc)
	if err != nil {
		return nil, err
	}

	for _, ref := range s.doc.Tilesets {
		ts, err := s.tileset(ref, s.mapPath)
		if err != nil {
			return nil, err
		}
		s.sets = append(s.sets, ts)
	}

	layers, err := s.layers(s.doc.Layers)
	if err != nil {
		return nil, err
	}
	if err := s.decodeTileLayers(); err != nil {
		return nil, err
	}

	m := &Map{
		Source:     s.mapPath,
		Doc:        s.doc,
		Layout:     s.layout,
		Tilesets:   s.sets,
		Layers:     layers,
		Properties: s.doc.Properties,
		Report:     Report{Warnings: s.warnings},
	}
	if s.doc.BackgroundColor != "" {
		if c, err := spec.ParseColor(s.doc.BackgroundColor); err == nil {
			m.Background = &c
		} else {
			s.Logger.Warn("tmx: ignoring background color", "map", s.mapPath, "err", err)
		}
	}
	s.Logger.Info("tmx: imported map", "map", s.mapPath,
		"orientation", s.layout.Orientation, "tilesets", len(s.sets), "warnings", len(s.warnings))
	return m, nil
}

// tileset builds the tileset for a reference found in the document at
// docPath, loading the external definition when there is one.
func (s *session) tileset(ref spec.TilesetRef, docPath string) (*Tileset, error) {
	if !ref.IsExternal() {
		ts, err := BuildTileset(&ref.Tileset, ref.FirstGID, docPath)
		if err != nil {
			return nil, err
		}
		return ts, nil
	}

	source := resolvePath(docPath, ref.Source)
	def, ok := s.tilesets[source]
	if !ok {
		data, err := s.read(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTilesetLoadFailed, source, err)
		}
		def, err = spec.DecodeTileset(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTilesetLoadFailed, source, err)
		}
		s.tilesets[source] = def
		s.Logger.Debug("tmx: loaded tileset", "source", source, "name", def.Name)
	}
	ts, err := BuildTileset(def, ref.FirstGID, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	ts.Source = source
	return ts, nil
}

func (s *session) layers(in spec.Layers) ([]Layer, error) {
	out := make([]Layer, 0, len(in))
	for _, layer := range in {
		var converted Layer
		var err error
		switch l := layer.(type) {
		case *spec.TileLayer:
			converted, err = s.tileLayer(l)
		case *spec.ObjectLayer:
			converted, err = s.objectLayer(l)
		case *spec.ImageLayer:
			converted = s.imageLayer(l)
		case *spec.GroupLayer:
			converted, err = s.groupLayer(l)
		default:
			err = fmt.Errorf("%w: unknown layer type %T", ErrMalformedDocument, layer)
		}
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layer.Common().Name, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

func (s *session) layerInfo(c *spec.LayerCommon) LayerInfo {
	info := LayerInfo{
		ID:         c.ID,
		Name:       c.Name,
		Class:      c.Class,
		Offset:     s.layout.LayerOffset(c.OffsetX, c.OffsetY),
		Opacity:    c.Opacity,
		Visible:    c.Visible,
		Properties: c.Properties,
	}
	info.Parallax[0], info.Parallax[1] = c.ParallaxX, c.ParallaxY
	if c.TintColor != "" {
		if tint, err := spec.ParseColor(c.TintColor); err == nil {
			info.Tint = &tint
		} else {
			s.Logger.Warn("tmx: ignoring tint color", "layer", c.Name, "err", err)
		}
	}
	return info
}

func (s *session) groupLayer(l *spec.GroupLayer) (*GroupLayer, error) {
	children, err := s.layers(l.Layers)
	if err != nil {
		return nil, err
	}
	return &GroupLayer{LayerInfo: s.layerInfo(&l.LayerCommon), Layers: children}, nil
}

func (s *session) imageLayer(l *spec.ImageLayer) *ImageLayer {
	out := &ImageLayer{
		LayerInfo: s.layerInfo(&l.LayerCommon),
		RepeatX:   l.RepeatX,
		RepeatY:   l.RepeatY,
	}
	if l.Image != nil && l.Image.Source != "" {
		ref := newImageRef(l.Image, s.mapPath)
		out.Image = &ref
	}
	return out
}

// tileLayer validates the data layout and queues the decoding of the cells.
func (s *session) tileLayer(l *spec.TileLayer) (*TileLayer, error) {
	out := &TileLayer{LayerInfo: s.layerInfo(&l.LayerCommon)}
	if !s.doc.Infinite {
		out.Width, out.Height = l.Width, l.Height
	}

	hasChunks := len(l.Data.Chunks) > 0
	if s.doc.Infinite != hasChunks {
		blank := strings.TrimSpace(l.Data.Text) == "" && len(l.Data.Tiles) == 0
		if !s.doc.Infinite || !blank {
			return nil, fmt.Errorf("%w: infinite=%t does not match chunked data", ErrLayerDecodeFailed, s.doc.Infinite)
		}
		// An infinite layer without chunks has no tiles.
		out.buildIndex()
		return out, nil
	}

	encoding, compression, err := l.Data.Format()
	if err != nil {
		return nil, err
	}
	s.jobs = append(s.jobs, func() ([]Warning, error) {
		return s.decodeCells(out, l, encoding, compression)
	})
	return out, nil
}

func (s *session) decodeTileLayers() error {
	results := make([][]Warning, len(s.jobs))
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, job := range s.jobs {
		g.Go(func() error {
			warnings, err := job()
			results[i] = warnings
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.warnings = append(s.warnings, slices.Concat(results...)...)
	return nil
}

// decodeCells runs on a worker goroutine; it only reads shared session
// state.
func (s *session) decodeCells(out *TileLayer, l *spec.TileLayer, encoding spec.Encoding, compression spec.Compression) ([]Warning, error) {
	var warnings []Warning
	if len(l.Data.Chunks) == 0 {
		gids, err := spec.DecodeData(encoding, compression, l.Data.Text, l.Data.Tiles, l.Width, l.Height)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		if err := s.placeCells(out, &warnings, gids, image.Rect(0, 0, l.Width, l.Height)); err != nil {
			return nil, err
		}
		out.buildIndex()
		return warnings, nil
	}

	var placed []image.Rectangle
	for _, chunk := range l.Data.Chunks {
		rect := image.Rect(chunk.X, chunk.Y, chunk.X+chunk.Width, chunk.Y+chunk.Height)
		err := func() error {
			if chunk.Width <= 0 || chunk.Height <= 0 {
				return fmt.Errorf("%w: chunk at (%d, %d) has size %dx%d", ErrLayerDecodeFailed, chunk.X, chunk.Y, chunk.Width, chunk.Height)
			}
			for _, other := range placed {
				if rect.Overlaps(other) {
					return fmt.Errorf("%w: chunk %v overlaps chunk %v", ErrLayerDecodeFailed, rect, other)
				}
			}
			return nil
		}()
		var gids []GID
		if err == nil {
			gids, err = spec.DecodeData(encoding, compression, chunk.Text, chunk.Tiles, chunk.Width, chunk.Height)
		}
		if err != nil {
			if s.Strict {
				return nil, fmt.Errorf("layer %q: chunk at (%d, %d): %w", l.Name, chunk.X, chunk.Y, err)
			}
			s.Logger.Warn("tmx: skipping chunk", "layer", l.Name, "x", chunk.X, "y", chunk.Y, "err", err)
			warnings = append(warnings, Warning{Layer: l.Name, Col: chunk.X, Row: chunk.Y, Err: err})
			continue
		}
		placed = append(placed, rect)
		if err := s.placeCells(out, &warnings, gids, rect); err != nil {
			return nil, err
		}
	}
	out.buildIndex()
	return warnings, nil
}

// placeCells resolves the gids of a row-major block covering area.
func (s *session) placeCells(out *TileLayer, warnings *[]Warning, gids []GID, area image.Rectangle) error {
	width := area.Dx()
	for i, gid := range gids {
		if gid.IsEmpty() {
			continue
		}
		col, row := area.Min.X+i%width, area.Min.Y+i/width
		ref, err := s.sets.Resolve(gid, s.layout.TileWidth, s.layout.TileHeight)
		if err != nil {
			if s.Strict {
				return fmt.Errorf("layer %q: cell (%d, %d): %w", out.Name, col, row, err)
			}
			s.Logger.Warn("tmx: skipping tile", "layer", out.Name, "col", col, "row", row, "gid", gid, "err", err)
			*warnings = append(*warnings, Warning{Layer: out.Name, Col: col, Row: row, GID: gid, Err: err})
			continue
		}
		out.Cells = append(out.Cells, Cell{Col: col, Row: row, Pos: s.layout.Place(col, row), TileRef: ref})
	}
	return nil
}

func (s *session) objectLayer(l *spec.ObjectLayer) (*ObjectLayer, error) {
	out := &ObjectLayer{
		LayerInfo: s.layerInfo(&l.LayerCommon),
		Color:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		DrawOrder: l.DrawOrder,
		Objects:   make([]Object, 0, len(l.Objects)),
	}
	if l.Color != "" {
		if c, err := spec.ParseColor(l.Color); err == nil {
			out.Color = c
		} else {
			s.Logger.Warn("tmx: ignoring layer color", "layer", l.Name, "err", err)
		}
	}
	for _, obj := range l.Objects {
		converted, err := s.object(obj, l.Name)
		if errors.Is(err, ErrUnresolvedTileReference) && !s.Strict {
			s.Logger.Warn("tmx: object without tile", "layer", l.Name, "object", obj.ID.Value(), "err", err)
			s.warnings = append(s.warnings, Warning{Layer: l.Name, GID: converted.GID.Value(), Err: err})
		} else if err != nil {
			return nil, fmt.Errorf("object %v: %w", obj.ID, err)
		}
		out.Objects = append(out.Objects, converted)
	}
	return out, nil
}

// object merges an object with its template and places it. When the only
// problem is an unresolved gid the object is returned along with the error.
func (s *session) object(obj spec.Object, layerName string) (Object, error) {
	sets := s.sets
	if obj.Template != "" {
		tmpl, err := s.template(resolvePath(s.mapPath, obj.Template))
		if err != nil {
			return Object{}, err
		}
		merged, err := spec.MergeObject(tmpl.Object, obj)
		if err != nil {
			return Object{}, fmt.Errorf("%s: %w", tmpl.Source, err)
		}
		if !obj.GID.IsSet() && tmpl.Tilesets != nil {
			sets = tmpl.Tilesets
		}
		obj = merged
	}
	obj.ApplyDefaults()

	out := Object{
		Object:   obj,
		Position: s.layout.ObjectPosition(obj.X.Value(), obj.Y.Value()),
	}
	for _, poly := range []*spec.Poly{obj.Polygon, obj.Polyline} {
		if poly == nil {
			continue
		}
		points, err := poly.Parse()
		if err != nil {
			return Object{}, err
		}
		for _, p := range points {
			out.Points = append(out.Points, s.layout.ObjectPoint(p))
		}
	}

	if gid := obj.GID.Value(); !gid.IsEmpty() {
		ref, err := sets.Resolve(gid, s.layout.TileWidth, s.layout.TileHeight)
		if err != nil {
			return out, err
		}
		out.Tile = &ref
	}
	return out, nil
}
