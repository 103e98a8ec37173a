package spec

import (
	"encoding/xml"
	"fmt"
)

// Layer is one of *TileLayer, *ObjectLayer, *ImageLayer or *GroupLayer.
type Layer interface {
	Common() *LayerCommon
	isLayer()
}

// LayerCommon holds the attributes shared by every layer kind.
type LayerCommon struct {
	ID         int        `xml:"id,attr"`
	Name       string     `xml:"name,attr"`
	Class      string     `xml:"class,attr"`
	OffsetX    float64    `xml:"offsetx,attr"`
	OffsetY    float64    `xml:"offsety,attr"`
	ParallaxX  float64    `xml:"parallaxx,attr"`
	ParallaxY  float64    `xml:"parallaxy,attr"`
	Opacity    float64    `xml:"opacity,attr"`
	Visible    bool       `xml:"visible,attr"`
	Locked     bool       `xml:"locked,attr"`
	TintColor  string     `xml:"tintcolor,attr"`
	Properties Properties `xml:"properties>property"`
}

func defaultLayerCommon() LayerCommon {
	return LayerCommon{ParallaxX: 1, ParallaxY: 1, Opacity: 1, Visible: true}
}

func (c *LayerCommon) Common() *LayerCommon {
	return c
}

type TileLayer struct {
	LayerCommon
	Width  int  `xml:"width,attr"`
	Height int  `xml:"height,attr"`
	Data   Data `xml:"data"`
}

type ObjectLayer struct {
	LayerCommon
	Color     string   `xml:"color,attr"`
	DrawOrder string   `xml:"draworder,attr"`
	Objects   []Object `xml:"object"`
}

type ImageLayer struct {
	LayerCommon
	Image   *Image `xml:"image"`
	RepeatX bool   `xml:"repeatx,attr"`
	RepeatY bool   `xml:"repeaty,attr"`
}

type GroupLayer struct {
	LayerCommon
	Layers Layers `xml:",any"`
}

func (*TileLayer) isLayer()   {}
func (*ObjectLayer) isLayer() {}
func (*ImageLayer) isLayer()  {}
func (*GroupLayer) isLayer()  {}

func (l *TileLayer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain TileLayer
	p := plain{LayerCommon: defaultLayerCommon()}
	if err := d.DecodeElement(&p, &start); err != nil {
		return layerError(start, err)
	}
	*l = TileLayer(p)
	return nil
}

func (l *ObjectLayer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain ObjectLayer
	p := plain{LayerCommon: defaultLayerCommon(), DrawOrder: "topdown"}
	if err := d.DecodeElement(&p, &start); err != nil {
		return layerError(start, err)
	}
	*l = ObjectLayer(p)
	return nil
}

func (l *ImageLayer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain ImageLayer
	p := plain{LayerCommon: defaultLayerCommon()}
	if err := d.DecodeElement(&p, &start); err != nil {
		return layerError(start, err)
	}
	*l = ImageLayer(p)
	return nil
}

func (l *GroupLayer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain GroupLayer
	p := plain{LayerCommon: defaultLayerCommon()}
	if err := d.DecodeElement(&p, &start); err != nil {
		return layerError(start, err)
	}
	*l = GroupLayer(p)
	return nil
}

func layerError(start xml.StartElement, err error) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "name" {
			return fmt.Errorf("<%s name=%q>: %w", start.Name.Local, attr.Value, err)
		}
	}
	return fmt.Errorf("<%s>: %w", start.Name.Local, err)
}

// Layers keeps the layer children of a map or group in document order.
// It is decoded from an ",any" field, so every unclaimed child element
// passes through here; elements that are not layers are skipped.
type Layers []Layer

func (ls *Layers) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var layer Layer
	switch start.Name.Local {
	case "layer":
		layer = new(TileLayer)
	case "objectgroup":
		layer = new(ObjectLayer)
	case "imagelayer":
		layer = new(ImageLayer)
	case "group":
		layer = new(GroupLayer)
	default:
		return d.Skip()
	}
	if err := d.DecodeElement(layer, &start); err != nil {
		return err
	}
	*ls = append(*ls, layer)
	return nil
}
