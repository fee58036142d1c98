package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/eak1mov/go-libtmx/tile"
	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

type mapSummary struct {
	Orientation string            `yaml:"orientation" msgpack:"orientation"`
	Width       int               `yaml:"width" msgpack:"width"`
	Height      int               `yaml:"height" msgpack:"height"`
	TileWidth   int               `yaml:"tile_width" msgpack:"tile_width"`
	TileHeight  int               `yaml:"tile_height" msgpack:"tile_height"`
	Properties  map[string]string `yaml:"properties,omitempty" msgpack:"properties,omitempty"`
	Tilesets    []tilesetSummary  `yaml:"tilesets" msgpack:"tilesets"`
	Layers      []layerSummary    `yaml:"layers" msgpack:"layers"`
}

type tilesetSummary struct {
	Name      string `yaml:"name" msgpack:"name"`
	FirstGID  uint32 `yaml:"first_gid" msgpack:"first_gid"`
	TileCount int    `yaml:"tile_count" msgpack:"tile_count"`
	Source    string `yaml:"source,omitempty" msgpack:"source,omitempty"`
}

type layerSummary struct {
	Name    string `yaml:"name" msgpack:"name"`
	Kind    string `yaml:"kind" msgpack:"kind"`
	Depth   int    `yaml:"depth,omitempty" msgpack:"depth,omitempty"`
	Format  string `yaml:"format,omitempty" msgpack:"format,omitempty"`
	Cells   int    `yaml:"cells,omitempty" msgpack:"cells,omitempty"`
	Objects int    `yaml:"objects,omitempty" msgpack:"objects,omitempty"`
}

func summarize(m *tmx.Map) mapSummary {
	s := mapSummary{
		Orientation: string(m.Orientation),
		Width:       m.Width,
		Height:      m.Height,
		TileWidth:   m.TileWidth,
		TileHeight:  m.TileHeight,
		Tilesets:    make([]tilesetSummary, 0, len(m.Tilesets)),
	}
	if len(m.Properties) > 0 {
		s.Properties = make(map[string]string, len(m.Properties))
		for _, p := range m.Properties {
			if p.Value != nil {
				s.Properties[p.Name] = p.Value.String()
			}
		}
	}
	for _, ts := range m.Tilesets {
		s.Tilesets = append(s.Tilesets, tilesetSummary{
			Name:      ts.Name,
			FirstGID:  uint32(ts.FirstGID),
			TileCount: ts.TileCount,
			Source:    ts.Source,
		})
	}
	s.Layers = summarizeLayers(m.Layers, 0, make([]layerSummary, 0))
	return s
}

func summarizeLayers(layers []tmx.Layer, depth int, out []layerSummary) []layerSummary {
	for _, l := range layers {
		ls := layerSummary{Name: l.Info().Name, Kind: l.Kind().String(), Depth: depth}
		switch {
		case l.Tile != nil:
			ls.Format = l.Tile.Format.String()
			for _, t := range tile.IterTiles(l.Tile) {
				if !t.Empty() {
					ls.Cells++
				}
			}
		case l.Objects != nil:
			ls.Objects = len(l.Objects.Objects)
		}
		out = append(out, ls)
		if l.Group != nil {
			out = summarizeLayers(l.Group.Layers, depth+1, out)
		}
	}
	return out
}

func writeSummary(w io.Writer, s mapSummary, format string) error {
	switch format {
	case "yaml", "":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(s); err != nil {
			return err
		}
		return encoder.Close()
	case "msgpack":
		data, err := msgpack.Marshal(s)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown summary format %q", format)
}

type inspectCmd struct {
	inputPath  string
	outputPath string
	format     string
}

func (c *inspectCmd) Name() string     { return "inspect" }
func (c *inspectCmd) Synopsis() string { return "print a summary of a map" }
func (c *inspectCmd) Usage() string {
	return "tmxutils inspect -i <path> [-f yaml|msgpack -o <path>]\n"
}
func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map path")
	f.StringVar(&c.outputPath, "o", "", "Output path (default stdout)")
	f.StringVar(&c.format, "f", "yaml", "Summary format (yaml, msgpack)")
}

func (c *inspectCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	e := envFrom(args)

	m, err := tmx.LoadFile(c.inputPath, tmx.WithLogger(e.logger))
	if err != nil {
		log.Error().Err(err).Str("path", c.inputPath).Msg("failed to load map")
		return subcommands.ExitFailure
	}

	var w io.Writer = os.Stdout
	if c.outputPath != "" {
		file, err := os.Create(c.outputPath)
		if err != nil {
			log.Error().Err(err).Msg("failed to create output")
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	if err := writeSummary(w, summarize(m), c.format); err != nil {
		log.Error().Err(err).Msg("failed to write summary")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
