package spec

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/math/f64"
)

// Object is a <object> element. Attributes are Optional so that a template
// instance can tell an omitted attribute from one written with a zero value.
type Object struct {
	ID         Optional[int]     `xml:"id,attr"`
	Name       Optional[string]  `xml:"name,attr"`
	Type       Optional[string]  `xml:"type,attr"`
	Class      Optional[string]  `xml:"class,attr"`
	X          Optional[float64] `xml:"x,attr"`
	Y          Optional[float64] `xml:"y,attr"`
	Width      Optional[float64] `xml:"width,attr"`
	Height     Optional[float64] `xml:"height,attr"`
	Rotation   Optional[float64] `xml:"rotation,attr"`
	GID        Optional[GID]     `xml:"gid,attr"`
	Visible    Optional[bool]    `xml:"visible,attr"`
	Template   string            `xml:"template,attr"`
	Properties Properties        `xml:"properties>property"`

	Ellipse  *Ellipse `xml:"ellipse"`
	Point    *Point   `xml:"point"`
	Polygon  *Poly    `xml:"polygon"`
	Polyline *Poly    `xml:"polyline"`
	Text     *Text    `xml:"text"`
}

type Ellipse struct{}

type Point struct{}

type Poly struct {
	Points string `xml:"points,attr"`
}

// Parse returns the vertices of a "x1,y1 x2,y2 ..." points attribute,
// relative to the object position.
func (p *Poly) Parse() ([]f64.Vec2, error) {
	fields := strings.Fields(p.Points)
	points := make([]f64.Vec2, 0, len(fields))
	for _, field := range fields {
		xs, ys, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("%w: point %q", ErrMalformedDocument, field)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: point %q: %w", ErrMalformedDocument, field, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: point %q: %w", ErrMalformedDocument, field, err)
		}
		points = append(points, f64.Vec2{x, y})
	}
	return points, nil
}

type Text struct {
	FontFamily string `xml:"fontfamily,attr"`
	PixelSize  int    `xml:"pixelsize,attr"`
	Wrap       bool   `xml:"wrap,attr"`
	Color      string `xml:"color,attr"`
	Bold       bool   `xml:"bold,attr"`
	Italic     bool   `xml:"italic,attr"`
	Underline  bool   `xml:"underline,attr"`
	Strikeout  bool   `xml:"strikeout,attr"`
	Kerning    bool   `xml:"kerning,attr"`
	HAlign     string `xml:"halign,attr"`
	VAlign     string `xml:"valign,attr"`
	Value      string `xml:",chardata"`
}

func (t *Text) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Text
	p := plain{
		FontFamily: "sans-serif",
		PixelSize:  16,
		Color:      "#000000",
		Kerning:    true,
		HAlign:     "left",
		VAlign:     "top",
	}
	if err := d.DecodeElement(&p, &start); err != nil {
		return fmt.Errorf("<text>: %w", err)
	}
	*t = Text(p)
	return nil
}

type Shape uint8

const (
	ShapeRectangle Shape = iota
	ShapeEllipse
	ShapePoint
	ShapePolygon
	ShapePolyline
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeEllipse:
		return "ellipse"
	case ShapePoint:
		return "point"
	case ShapePolygon:
		return "polygon"
	case ShapePolyline:
		return "polyline"
	case ShapeText:
		return "text"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// Shape reports the geometry of the object. Tile objects (with a gid) are
// rectangles as well.
func (o *Object) Shape() Shape {
	switch {
	case o.Ellipse != nil:
		return ShapeEllipse
	case o.Point != nil:
		return ShapePoint
	case o.Polygon != nil:
		return ShapePolygon
	case o.Polyline != nil:
		return ShapePolyline
	case o.Text != nil:
		return ShapeText
	}
	return ShapeRectangle
}

func (o *Object) hasShape() bool {
	return o.Shape() != ShapeRectangle
}

// TypeName returns the type, falling back to the newer class attribute.
func (o *Object) TypeName() string {
	if t := o.Type.Value(); t != "" {
		return t
	}
	return o.Class.Value()
}

// Clone returns a copy that shares no memory with o.
func (o *Object) Clone() Object {
	c := *o
	c.Properties = o.Properties.Clone()
	c.Ellipse = clonePtr(o.Ellipse)
	c.Point = clonePtr(o.Point)
	c.Polygon = clonePtr(o.Polygon)
	c.Polyline = clonePtr(o.Polyline)
	c.Text = clonePtr(o.Text)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ApplyDefaults fills attributes that neither the object nor its template
// set. It must run after MergeObject, never before.
func (o *Object) ApplyDefaults() {
	o.ID.SetDefault(0)
	o.X.SetDefault(0)
	o.Y.SetDefault(0)
	o.Width.SetDefault(0)
	o.Height.SetDefault(0)
	o.Rotation.SetDefault(0)
	o.GID.SetDefault(0)
	o.Visible.SetDefault(true)
}

// MergeObject overlays an instance on a copy of its template. Attributes
// set on the instance win, properties are merged with MergeProperties and
// an instance shape replaces the template shape. Neither input is modified.
func MergeObject(template, instance Object) (Object, error) {
	if template.Template != "" {
		return Object{}, fmt.Errorf("%w: template object refers to %q", ErrNestedTemplateUnsupported, template.Template)
	}

	merged := template.Clone()
	merged.ID = merged.ID.Override(instance.ID)
	merged.Name = merged.Name.Override(instance.Name)
	// type and class name the same thing; an instance setting either replaces both.
	if instance.Type.IsSet() || instance.Class.IsSet() {
		merged.Type = instance.Type
		merged.Class = instance.Class
	}
	merged.X = merged.X.Override(instance.X)
	merged.Y = merged.Y.Override(instance.Y)
	merged.Width = merged.Width.Override(instance.Width)
	merged.Height = merged.Height.Override(instance.Height)
	merged.Rotation = merged.Rotation.Override(instance.Rotation)
	merged.GID = merged.GID.Override(instance.GID)
	merged.Visible = merged.Visible.Override(instance.Visible)
	merged.Template = instance.Template
	merged.Properties = MergeProperties(template.Properties, instance.Properties)

	if instance.hasShape() {
		shaped := instance.Clone()
		merged.Ellipse = shaped.Ellipse
		merged.Point = shaped.Point
		merged.Polygon = shaped.Polygon
		merged.Polyline = shaped.Polyline
		merged.Text = shaped.Text
	}

	return merged, nil
}
