package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

type inspectCmd struct {
	importFlags
	inputPath string
}

func (c *inspectCmd) Name() string     { return "inspect" }
func (c *inspectCmd) Synopsis() string { return "print a summary of an imported map" }
func (c *inspectCmd) Usage() string {
	return "tmxutils inspect -i <path> [-config <path> -strict -j <n>]\n"
}
func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map file path")
	c.importFlags.register(f)
}

type tilesetSummary struct {
	Name     string `yaml:"name"`
	Source   string `yaml:"source,omitempty"`
	FirstGID uint32 `yaml:"first_gid"`
	Tiles    int    `yaml:"tiles"`
}

type layerSummary struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	Cells   int            `yaml:"cells,omitempty"`
	Objects int            `yaml:"objects,omitempty"`
	Image   string         `yaml:"image,omitempty"`
	Layers  []layerSummary `yaml:"layers,omitempty"`
}

type mapSummary struct {
	Source      string           `yaml:"source"`
	Orientation string           `yaml:"orientation"`
	SortOrder   string           `yaml:"sort_order"`
	Size        [2]int           `yaml:"size,flow"`
	TileSize    [2]int           `yaml:"tile_size,flow"`
	Infinite    bool             `yaml:"infinite"`
	Tilesets    []tilesetSummary `yaml:"tilesets"`
	Layers      []layerSummary   `yaml:"layers"`
	Warnings    []string         `yaml:"warnings,omitempty"`
}

func summarizeLayers(layers []tmx.Layer) []layerSummary {
	var result []layerSummary
	for _, layer := range layers {
		s := layerSummary{Name: layer.Info().Name}
		switch l := layer.(type) {
		case *tmx.TileLayer:
			s.Kind, s.Cells = "tiles", len(l.Cells)
		case *tmx.ObjectLayer:
			s.Kind, s.Objects = "objects", len(l.Objects)
		case *tmx.ImageLayer:
			s.Kind = "image"
			if l.Image != nil {
				s.Image = l.Image.Source
			}
		case *tmx.GroupLayer:
			s.Kind, s.Layers = "group", summarizeLayers(l.Layers)
		}
		result = append(result, s)
	}
	return result
}

func summarize(m *tmx.Map) mapSummary {
	s := mapSummary{
		Source:      m.Source,
		Orientation: m.Layout.Orientation.String(),
		SortOrder:   m.Layout.SortOrder.String(),
		Size:        [2]int{m.Doc.Width, m.Doc.Height},
		TileSize:    [2]int{m.Layout.TileWidth, m.Layout.TileHeight},
		Infinite:    m.Doc.Infinite,
		Layers:      summarizeLayers(m.Layers),
	}
	for _, ts := range m.Tilesets {
		s.Tilesets = append(s.Tilesets, tilesetSummary{
			Name:     ts.Name,
			Source:   ts.Source,
			FirstGID: uint32(ts.FirstGID),
			Tiles:    ts.Count(),
		})
	}
	for _, w := range m.Report.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s
}

func (c *inspectCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.inputPath == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	imp, err := c.importer()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	m, err := imp.importFile(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(summarize(m)); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if err := encoder.Close(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
