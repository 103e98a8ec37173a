package spec

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Property is a custom property. An omitted type is stored as "string" so
// that properties compare by (name, type) regardless of how they were written.
type Property struct {
	Name         string
	Type         string
	PropertyType string
	Value        string
}

func (p *Property) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Name         string  `xml:"name,attr"`
		Type         string  `xml:"type,attr"`
		PropertyType string  `xml:"propertytype,attr"`
		Value        *string `xml:"value,attr"`
		Text         string  `xml:",chardata"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return fmt.Errorf("<property>: %w", err)
	}
	*p = Property{Name: raw.Name, Type: raw.Type, PropertyType: raw.PropertyType, Value: raw.Text}
	if raw.Value != nil {
		p.Value = *raw.Value
	}
	if p.Type == "" {
		p.Type = "string"
	}
	return nil
}

// Typed converts the raw value according to the property type: int and
// object give int64, float gives float64, bool gives bool, color gives
// color.NRGBA. Everything else stays a string.
func (p Property) Typed() (any, error) {
	var v any
	var err error
	switch p.Type {
	case "int", "object":
		v, err = strconv.ParseInt(strings.TrimSpace(p.Value), 10, 64)
	case "float":
		v, err = strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
	case "bool":
		v, err = strconv.ParseBool(strings.TrimSpace(p.Value))
	case "color":
		v, err = ParseColor(p.Value)
	default:
		v = p.Value
	}
	if err != nil {
		return nil, fmt.Errorf("property %q (%s): %w", p.Name, p.Type, err)
	}
	return v, nil
}

type Properties []Property

func (ps Properties) Get(name string) (Property, bool) {
	i := slices.IndexFunc(ps, func(p Property) bool { return p.Name == name })
	if i < 0 {
		return Property{}, false
	}
	return ps[i], true
}

func (ps Properties) Clone() Properties {
	return slices.Clone(ps)
}

// MergeProperties overlays instance on a copy of template. Entries match on
// (name, type): a match takes the instance value, anything else is appended.
func MergeProperties(template, instance Properties) Properties {
	merged := template.Clone()
	for _, p := range instance {
		i := slices.IndexFunc(merged, func(q Property) bool {
			return q.Name == p.Name && q.Type == p.Type
		})
		if i >= 0 {
			merged[i] = p
		} else {
			merged = append(merged, p)
		}
	}
	return merged
}

// ParseColor accepts #RRGGBB and #AARRGGBB (with or without the leading
// hash) as well as SVG color names.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	switch len(raw) {
	case 3:
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}, nil
	case 4:
		return color.NRGBA{A: raw[0], R: raw[1], G: raw[2], B: raw[3]}, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
}
