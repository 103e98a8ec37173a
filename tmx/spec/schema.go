package spec

import (
	"encoding/xml"
	"fmt"
)

// Map is the root <map> element of a TMX document.
type Map struct {
	XMLName         xml.Name     `xml:"map"`
	Version         string       `xml:"version,attr"`
	TiledVersion    string       `xml:"tiledversion,attr"`
	Class           string       `xml:"class,attr"`
	Orientation     string       `xml:"orientation,attr"`
	RenderOrder     string       `xml:"renderorder,attr"`
	Width           int          `xml:"width,attr"`
	Height          int          `xml:"height,attr"`
	TileWidth       int          `xml:"tilewidth,attr"`
	TileHeight      int          `xml:"tileheight,attr"`
	HexSideLength   int          `xml:"hexsidelength,attr"`
	StaggerAxis     string       `xml:"staggeraxis,attr"`
	StaggerIndex    string       `xml:"staggerindex,attr"`
	BackgroundColor string       `xml:"backgroundcolor,attr"`
	Infinite        bool         `xml:"infinite,attr"`
	NextLayerID     int          `xml:"nextlayerid,attr"`
	NextObjectID    int          `xml:"nextobjectid,attr"`
	Properties      Properties   `xml:"properties>property"`
	Tilesets        []TilesetRef `xml:"tileset"`
	Layers          Layers       `xml:",any"`
}

func (m *Map) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Map
	p := plain{RenderOrder: "right-down", StaggerAxis: "y", StaggerIndex: "odd"}
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	*m = Map(p)
	return nil
}

// TilesetRef is a <tileset> element inside a map or template. When Source
// is set the definition lives in an external TSX document and only
// FirstGID is meaningful here.
type TilesetRef struct {
	FirstGID GID    `xml:"firstgid,attr"`
	Source   string `xml:"source,attr"`
	Tileset
}

func (r *TilesetRef) IsExternal() bool {
	return r.Source != ""
}

type Tileset struct {
	Version         string     `xml:"version,attr"`
	TiledVersion    string     `xml:"tiledversion,attr"`
	Name            string     `xml:"name,attr"`
	Class           string     `xml:"class,attr"`
	TileWidth       int        `xml:"tilewidth,attr"`
	TileHeight      int        `xml:"tileheight,attr"`
	Spacing         int        `xml:"spacing,attr"`
	Margin          int        `xml:"margin,attr"`
	TileCount       int        `xml:"tilecount,attr"`
	Columns         int        `xml:"columns,attr"`
	ObjectAlignment string     `xml:"objectalignment,attr"`
	TileOffset      TileOffset `xml:"tileoffset"`
	Grid            *Grid      `xml:"grid"`
	Image           *Image     `xml:"image"`
	Properties      Properties `xml:"properties>property"`
	Tiles           []Tile     `xml:"tile"`
}

// IsCollection reports whether every tile brings its own image.
func (ts *Tileset) IsCollection() bool {
	return ts.Image == nil
}

type TileOffset struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}

type Grid struct {
	Orientation string `xml:"orientation,attr"`
	Width       int    `xml:"width,attr"`
	Height      int    `xml:"height,attr"`
}

type Image struct {
	Format string `xml:"format,attr"`
	Source string `xml:"source,attr"`
	Trans  string `xml:"trans,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type Tile struct {
	ID          int          `xml:"id,attr"`
	Type        string       `xml:"type,attr"`
	Class       string       `xml:"class,attr"`
	Probability float64      `xml:"probability,attr"`
	X           int          `xml:"x,attr"`
	Y           int          `xml:"y,attr"`
	Width       int          `xml:"width,attr"`
	Height      int          `xml:"height,attr"`
	Image       *Image       `xml:"image"`
	ObjectGroup *ObjectLayer `xml:"objectgroup"`
	Animation   []Frame      `xml:"animation>frame"`
	Properties  Properties   `xml:"properties>property"`
}

func (t *Tile) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Tile
	p := plain{Probability: 1}
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	*t = Tile(p)
	return nil
}

// TypeName returns the type, falling back to the newer class attribute.
func (t *Tile) TypeName() string {
	if t.Type != "" {
		return t.Type
	}
	return t.Class
}

type Frame struct {
	TileID   int `xml:"tileid,attr"`
	Duration int `xml:"duration,attr"` // milliseconds
}

// Template is the root <template> element of a TX document.
type Template struct {
	XMLName xml.Name    `xml:"template"`
	Tileset *TilesetRef `xml:"tileset"`
	Object  Object      `xml:"object"`
}

func (t *Template) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var p struct {
		XMLName xml.Name    `xml:"template"`
		Tileset *TilesetRef `xml:"tileset"`
		Object  *Object     `xml:"object"`
	}
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	if p.Object == nil {
		return fmt.Errorf("<template>: missing <object>")
	}
	*t = Template{XMLName: p.XMLName, Tileset: p.Tileset, Object: *p.Object}
	return nil
}
