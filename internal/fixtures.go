package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing/fstest"

	"github.com/eak1mov/go-libtmx/tmx/spec"
)

const terrainTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="terrain" tilewidth="16" tileheight="16" tilecount="49" columns="7">
 <image source="terrain.png" width="112" height="112"/>
 <tile id="3" type="water">
  <properties><property name="depth" type="int" value="2"/></properties>
  <animation><frame tileid="3" duration="200"/><frame tileid="4" duration="200"/></animation>
 </tile>
 <tile id="5">
  <objectgroup draworder="index"><object id="1" x="0" y="8" width="16" height="8"/></objectgroup>
 </tile>
</tileset>
`

const propsTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="props" tilewidth="32" tileheight="32" tilecount="2" columns="0">
 <grid orientation="orthogonal" width="1" height="1"/>
 <tile id="0"><image source="../images/barrel.png" width="16" height="32"/></tile>
 <tile id="2" type="crate"><image source="../images/crate.png" width="32" height="32"/></tile>
</tileset>
`

const crateTX = `<?xml version="1.0" encoding="UTF-8"?>
<template>
 <tileset firstgid="1" source="../tilesets/props.tsx"/>
 <object name="crate" type="box" gid="3" width="32" height="32">
  <properties>
   <property name="hp" type="int" value="10"/>
   <property name="loot" value="coins"/>
  </properties>
 </object>
</template>
`

const spawnTX = `<?xml version="1.0" encoding="UTF-8"?>
<template>
 <object name="spawn" type="marker"><point/></object>
</template>
`

const nestedTX = `<?xml version="1.0" encoding="UTF-8"?>
<template>
 <object name="nested" template="crate.tx"/>
</template>
`

// CSV renders gids the way the editor writes csv layer data.
func CSV(gids []spec.GID, width int) string {
	text, err := spec.EncodeData(spec.EncodingCSV, spec.CompressionNone, gids, width)
	if err != nil {
		panic(err)
	}
	return text
}

// Base64 renders gids as base64 layer data with the given compression.
func Base64(gids []spec.GID, compression spec.Compression) string {
	text, err := spec.EncodeData(spec.EncodingBase64, compression, gids, len(gids))
	if err != nil {
		panic(err)
	}
	return text
}

// Chunk returns the gids of an empty size x size chunk with some cells set.
func Chunk(size int, cells map[int]spec.GID) []spec.GID {
	gids := make([]spec.GID, size*size)
	for i, gid := range cells {
		gids[i] = gid
	}
	return gids
}

// OrthoGround is the layer data of the "ground" layer of maps/ortho.tmx.
var OrthoGround = []spec.GID{
	1, 2, 3, 4,
	0, 49, 50, 0,
	spec.FlipHorizontal | spec.FlipDiagonal | 1, 0, 0, 52,
}

// OrthoOverlay is the layer data of the "overlay" layer of maps/ortho.tmx.
var OrthoOverlay = []spec.GID{
	0, 0, 0, 0,
	0, 6, 0, 0,
	0, 0, 0, spec.FlipVertical | 4,
}

func orthoTMX() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="3" tilewidth="16" tileheight="16" infinite="0" backgroundcolor="#203040">
 <properties><property name="title" value="Ortho"/></properties>
 <tileset firstgid="1" source="../tilesets/terrain.tsx"/>
 <tileset firstgid="50" source="../tilesets/props.tsx"/>
 <layer id="1" name="ground" width="4" height="3">
  <data encoding="csv">%s</data>
 </layer>
 <objectgroup id="2" name="things" color="#ff0000" offsetx="8" offsety="-16">
  <object id="1" template="../templates/crate.tx" x="32" y="48">
   <properties><property name="hp" type="int" value="25"/></properties>
  </object>
  <object id="2" template="../templates/crate.tx" x="0" y="16" gid="50"/>
  <object id="3" template="../templates/spawn.tx" x="8" y="8"/>
  <object id="4" name="zone" x="16" y="16"><polygon points="0,0 16,0 16,16"/></object>
  <object id="5" name="sign" x="0" y="0" width="64" height="16"><text wrap="1">Hello</text></object>
 </objectgroup>
 <group id="3" name="fx" opacity="0.5">
  <layer id="4" name="overlay" width="4" height="3" tintcolor="#80ffffff">
   <data encoding="base64" compression="zlib">
   %s
   </data>
  </layer>
  <imagelayer id="5" name="sky" repeatx="1">
   <image source="../images/sky.png" width="256" height="128"/>
  </imagelayer>
 </group>
</map>
`, CSV(OrthoGround, 4), Base64(OrthoOverlay, spec.CompressionZlib))
}

func smallMap(orientation, extra, data string) string {
	return fmt.Sprintf(`<map orientation=%q width="2" height="2" tilewidth="64" tileheight="32" %s>
 <tileset firstgid="1" source="../tilesets/terrain.tsx"/>
 <layer id="1" name="tiles" width="2" height="2"><data encoding="csv">%s</data></layer>
</map>
`, orientation, extra, data)
}

func infiniteTMX(chunks ...string) string {
	return fmt.Sprintf(`<map orientation="orthogonal" width="30" height="20" tilewidth="16" tileheight="16" infinite="1">
 <tileset firstgid="1" source="../tilesets/terrain.tsx"/>
 <layer id="1" name="world" width="30" height="20">
  <data encoding="csv">
%s
  </data>
 </layer>
 <layer id="2" name="empty" width="30" height="20"><data encoding="csv"/></layer>
</map>
`, strings.Join(chunks, "\n"))
}

// ChunkXML renders a csv chunk element.
func ChunkXML(x, y, size int, gids []spec.GID) string {
	return fmt.Sprintf(`<chunk x="%d" y="%d" width="%d" height="%d">%s</chunk>`, x, y, size, size, CSV(gids, size))
}

// Fixtures returns a small project of maps, tilesets and templates laid out
// the way the editor saves them:
//
//	maps/        TMX documents
//	tilesets/    TSX documents
//	templates/   TX documents
func Fixtures() fstest.MapFS {
	files := map[string]string{
		"tilesets/terrain.tsx": terrainTSX,
		"tilesets/props.tsx":   propsTSX,
		"templates/crate.tx":   crateTX,
		"templates/spawn.tx":   spawnTX,
		"templates/nested.tx":  nestedTX,

		"maps/ortho.tmx":      orthoTMX(),
		"maps/iso.tmx":        smallMap("isometric", "", "1,2,3,4"),
		"maps/hex.tmx":        smallMap("hexagonal", `hexsidelength="16" staggeraxis="x" staggerindex="odd"`, "1,2,3,4"),
		"maps/staggered.tmx":  smallMap("staggered", `staggeraxis="y" staggerindex="odd"`, "1,2,3,4"),
		"maps/unresolved.tmx": smallMap("orthogonal", "", "1,"+strconv.Itoa(99)+",0,"+strconv.FormatUint(uint64(spec.FlipHorizontal|49), 10)),
		"maps/bad_data.tmx":   smallMap("orthogonal", "", "1,2,3"),
		"maps/missing_tileset.tmx": `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="../tilesets/nope.tsx"/>
</map>
`,
		"maps/nested_template.tmx": `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <objectgroup name="objects"><object id="1" template="../templates/nested.tx"/></objectgroup>
</map>
`,

		"maps/infinite.tmx": infiniteTMX(
			ChunkXML(-16, 0, 16, Chunk(16, map[int]spec.GID{0: 1})),
			ChunkXML(0, 0, 16, Chunk(16, map[int]spec.GID{17: 2, 255: spec.FlipHorizontal | 3})),
		),
		"maps/infinite_overlap.tmx": infiniteTMX(
			ChunkXML(0, 0, 16, Chunk(16, map[int]spec.GID{0: 1})),
			ChunkXML(8, 8, 16, Chunk(16, map[int]spec.GID{0: 2})),
		),
		"maps/infinite_bad_chunk.tmx": infiniteTMX(
			ChunkXML(0, 0, 16, Chunk(16, map[int]spec.GID{0: 1})),
			`<chunk x="16" y="0" width="16" height="16">1,2,3</chunk>`,
		),
		"maps/infinite_mismatch.tmx": `<map orientation="orthogonal" width="2" height="1" tilewidth="16" tileheight="16" infinite="1">
 <tileset firstgid="1" source="../tilesets/terrain.tsx"/>
 <layer id="1" name="flat" width="2" height="1"><data encoding="csv">1,2</data></layer>
</map>
`,
		"maps/finite_chunks.tmx": `<map orientation="orthogonal" width="16" height="16" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="../tilesets/terrain.tsx"/>
 <layer id="1" name="chunky" width="16" height="16"><data encoding="csv">` +
			ChunkXML(0, 0, 16, Chunk(16, nil)) + `</data></layer>
</map>
`,
	}

	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

// WriteFixtures copies Fixtures into dir on the local file system.
func WriteFixtures(dir string) error {
	for name, file := range Fixtures() {
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, file.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
