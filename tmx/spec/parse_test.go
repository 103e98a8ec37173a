package spec_test

import (
	"errors"
	"testing"

	"github.com/eak1mov/go-libtmx/tmx/spec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const layeredMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16" nextlayerid="6" nextobjectid="2">
 <editorsettings><export target="x.json" format="json"/></editorsettings>
 <properties>
  <property name="music" value="theme.ogg"/>
  <property name="speed" type="float" value="1.5"/>
  <property name="note">line one
line two</property>
 </properties>
 <tileset firstgid="1" source="terrain.tsx"/>
 <layer id="1" name="ground" width="2" height="2">
  <data encoding="csv">1,2,
3,4</data>
 </layer>
 <unknownthing foo="bar"><layer id="99" name="hidden"/></unknownthing>
 <group id="2" name="decor" offsetx="8" visible="0">
  <imagelayer id="3" name="sky"><image source="sky.png" width="64" height="32"/></imagelayer>
  <objectgroup id="4" name="things">
   <object id="1" x="0" y="16" gid="2"/>
  </objectgroup>
 </group>
 <layer id="5" name="top" width="2" height="2" opacity="0.5">
  <data encoding="base64" compression="zlib">eJxjYGBgAAAABAAB</data>
 </layer>
</map>`

func layerNames(layers spec.Layers) []string {
	var names []string
	for _, layer := range layers {
		names = append(names, layer.Common().Name)
		if group, ok := layer.(*spec.GroupLayer); ok {
			for _, name := range layerNames(group.Layers) {
				names = append(names, group.Name+"/"+name)
			}
		}
	}
	return names
}

func TestDecodeMapLayerOrder(t *testing.T) {
	m, err := spec.DecodeMap([]byte(layeredMap))
	require.NoError(t, err)

	wantNames := []string{"ground", "decor", "decor/sky", "decor/things", "top"}
	if diff := cmp.Diff(wantNames, layerNames(m.Layers)); diff != "" {
		t.Errorf("layer names mismatch (-want+got):\n%v", diff)
	}

	require.IsType(t, &spec.TileLayer{}, m.Layers[0])
	require.IsType(t, &spec.GroupLayer{}, m.Layers[1])
	require.IsType(t, &spec.TileLayer{}, m.Layers[2])

	group := m.Layers[1].(*spec.GroupLayer)
	require.Equal(t, 8.0, group.OffsetX)
	require.False(t, group.Visible)
	require.IsType(t, &spec.ImageLayer{}, group.Layers[0])
	require.IsType(t, &spec.ObjectLayer{}, group.Layers[1])

	top := m.Layers[2].(*spec.TileLayer)
	require.Equal(t, 0.5, top.Opacity)
	require.Equal(t, "base64", top.Data.Encoding)
	require.Equal(t, "zlib", top.Data.Compression)
}

func TestDecodeMapDefaults(t *testing.T) {
	m, err := spec.DecodeMap([]byte(layeredMap))
	require.NoError(t, err)

	require.Equal(t, "right-down", m.RenderOrder)
	require.Equal(t, "y", m.StaggerAxis)
	require.Equal(t, "odd", m.StaggerIndex)
	require.False(t, m.Infinite)

	ground := m.Layers[0].(*spec.TileLayer)
	want := spec.LayerCommon{ID: 1, Name: "ground", ParallaxX: 1, ParallaxY: 1, Opacity: 1, Visible: true}
	if diff := cmp.Diff(want, ground.LayerCommon); diff != "" {
		t.Errorf("layer defaults mismatch (-want+got):\n%v", diff)
	}

	things := m.Layers[1].(*spec.GroupLayer).Layers[1].(*spec.ObjectLayer)
	require.Equal(t, "topdown", things.DrawOrder)
}

func TestDecodeMapProperties(t *testing.T) {
	m, err := spec.DecodeMap([]byte(layeredMap))
	require.NoError(t, err)

	want := spec.Properties{
		{Name: "music", Type: "string", Value: "theme.ogg"},
		{Name: "speed", Type: "float", Value: "1.5"},
		{Name: "note", Type: "string", Value: "line one\nline two"},
	}
	if diff := cmp.Diff(want, m.Properties); diff != "" {
		t.Errorf("properties mismatch (-want+got):\n%v", diff)
	}
}

func TestDecodeMapTilesets(t *testing.T) {
	doc := `<map orientation="orthogonal" width="1" height="1" tilewidth="8" tileheight="8">
 <tileset firstgid="1" source="a.tsx"/>
 <tileset firstgid="50" name="inline" tilewidth="8" tileheight="8" tilecount="4" columns="2">
  <tileoffset x="2" y="-3"/>
  <image source="inline.png" width="16" height="16"/>
  <tile id="1" type="wall"><properties><property name="solid" type="bool" value="true"/></properties></tile>
 </tileset>
</map>`
	m, err := spec.DecodeMap([]byte(doc))
	require.NoError(t, err)
	require.Len(t, m.Tilesets, 2)

	require.True(t, m.Tilesets[0].IsExternal())
	require.Equal(t, spec.GID(1), m.Tilesets[0].FirstGID)

	inline := m.Tilesets[1]
	require.False(t, inline.IsExternal())
	require.False(t, inline.IsCollection())
	require.Equal(t, spec.GID(50), inline.FirstGID)
	require.Equal(t, spec.TileOffset{X: 2, Y: -3}, inline.TileOffset)
	require.Equal(t, "inline.png", inline.Image.Source)
	require.Len(t, inline.Tiles, 1)
	require.Equal(t, "wall", inline.Tiles[0].TypeName())
}

func TestDecodeMapMalformed(t *testing.T) {
	testCases := []struct {
		Name string
		Doc  string
	}{
		{Name: "NotXML", Doc: `<map orientation="orthogonal"`},
		{Name: "WrongRoot", Doc: `<tileset name="x" tilewidth="8" tileheight="8"/>`},
		{Name: "BadInt", Doc: `<map width="abc" tilewidth="8" tileheight="8"/>`},
		{Name: "NoTileSize", Doc: `<map width="1" height="1"/>`},
		{Name: "FirstGIDZero", Doc: `<map tilewidth="8" tileheight="8"><tileset firstgid="0" source="a.tsx"/></map>`},
		{Name: "FirstGIDOrder", Doc: `<map tilewidth="8" tileheight="8"><tileset firstgid="5" source="a.tsx"/><tileset firstgid="5" source="b.tsx"/></map>`},
		{Name: "EmptyTileset", Doc: `<map tilewidth="8" tileheight="8"><tileset firstgid="1"/></map>`},
		{Name: "BadObjectAttr", Doc: `<map tilewidth="8" tileheight="8"><objectgroup name="o"><object x="left"/></objectgroup></map>`},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := spec.DecodeMap([]byte(tc.Doc))
			require.Truef(t, errors.Is(err, spec.ErrMalformedDocument), "unexpected error: %v", err)
		})
	}
}

func TestDecodeMapErrorNamesLayer(t *testing.T) {
	doc := `<map tilewidth="8" tileheight="8"><group name="outer"><layer name="inner" width="x"/></group></map>`
	_, err := spec.DecodeMap([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), `<group name="outer">`)
	require.Contains(t, err.Error(), `<layer name="inner">`)
}

func TestDecodeTileset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="props" tilewidth="32" tileheight="48" tilecount="2" columns="0">
 <grid orientation="orthogonal" width="1" height="1"/>
 <tile id="0"><image source="barrel.png" width="32" height="48"/></tile>
 <tile id="7" probability="0.25">
  <image source="sheet.png" width="128" height="128"/>
  <objectgroup draworder="index"><object id="1" x="2" y="4" width="28" height="40"/></objectgroup>
  <animation><frame tileid="0" duration="100"/><frame tileid="7" duration="150"/></animation>
 </tile>
</tileset>`
	ts, err := spec.DecodeTileset([]byte(doc))
	require.NoError(t, err)
	require.True(t, ts.IsCollection())
	require.Equal(t, "props", ts.Name)
	require.Len(t, ts.Tiles, 2)

	tile := ts.Tiles[1]
	require.Equal(t, 7, tile.ID)
	require.Equal(t, 0.25, tile.Probability)
	require.Equal(t, 1.0, ts.Tiles[0].Probability)
	require.NotNil(t, tile.ObjectGroup)
	require.Len(t, tile.ObjectGroup.Objects, 1)
	require.Equal(t, "index", tile.ObjectGroup.DrawOrder)
	if diff := cmp.Diff([]spec.Frame{{TileID: 0, Duration: 100}, {TileID: 7, Duration: 150}}, tile.Animation); diff != "" {
		t.Errorf("animation mismatch (-want+got):\n%v", diff)
	}

	_, err = spec.DecodeTileset([]byte(`<map tilewidth="8" tileheight="8"/>`))
	require.True(t, errors.Is(err, spec.ErrMalformedDocument))
}

func TestDecodeTemplate(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<template>
 <tileset firstgid="1" source="../tilesets/props.tsx"/>
 <object name="crate" type="box" gid="3" width="32" height="32">
  <properties><property name="hp" type="int" value="10"/></properties>
 </object>
</template>`
	tmpl, err := spec.DecodeTemplate([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, tmpl.Tileset)
	require.Equal(t, "../tilesets/props.tsx", tmpl.Tileset.Source)

	obj := tmpl.Object
	require.Equal(t, spec.Some("crate"), obj.Name)
	require.Equal(t, spec.Some(spec.GID(3)), obj.GID)
	require.False(t, obj.X.IsSet())
	require.False(t, obj.ID.IsSet())

	_, err = spec.DecodeTemplate([]byte(`<template><tileset firstgid="1" source="a.tsx"/></template>`))
	require.True(t, errors.Is(err, spec.ErrMalformedDocument))
}

func TestObjectAttributePresence(t *testing.T) {
	doc := `<map tilewidth="8" tileheight="8"><objectgroup>
 <object id="3" x="0" name="" visible="0"/>
 <object id="4"><ellipse/></object>
 <object id="5"><point/></object>
 <object id="6"><polygon points="0,0 16,0 16,-8.5"/></object>
 <object id="7"><text wrap="1">Hello</text></object>
</objectgroup></map>`
	m, err := spec.DecodeMap([]byte(doc))
	require.NoError(t, err)
	objects := m.Layers[0].(*spec.ObjectLayer).Objects
	require.Len(t, objects, 5)

	first := objects[0]
	require.True(t, first.X.IsExplicit())
	require.Equal(t, 0.0, first.X.Value())
	require.False(t, first.Y.IsSet())
	require.True(t, first.Name.IsExplicit())
	require.Equal(t, spec.Some(false), first.Visible)
	require.Equal(t, spec.ShapeRectangle, first.Shape())

	require.Equal(t, spec.ShapeEllipse, objects[1].Shape())
	require.Equal(t, spec.ShapePoint, objects[2].Shape())
	require.Equal(t, spec.ShapePolygon, objects[3].Shape())

	points, err := objects[3].Polygon.Parse()
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, -8.5, points[2][1])

	text := objects[4].Text
	require.Equal(t, spec.ShapeText, objects[4].Shape())
	require.Equal(t, "Hello", text.Value)
	require.True(t, text.Wrap)
	require.True(t, text.Kerning)
	require.Equal(t, 16, text.PixelSize)
	require.Equal(t, "left", text.HAlign)
}
