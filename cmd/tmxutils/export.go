package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/eak1mov/go-libtmx/layerfile"
	"github.com/eak1mov/go-libtmx/sqlite"
	"github.com/eak1mov/go-libtmx/tile"
	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

type exportCmd struct {
	inputPath    string
	outputFormat string
	outputPath   string
}

func (c *exportCmd) Name() string     { return "export" }
func (c *exportCmd) Synopsis() string { return "export the tile layers of a map" }
func (c *exportCmd) Usage() string {
	return "tmxutils export -i <path> -o <path> [-of sqlite|layerfile]\n"
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map path")
	f.StringVar(&c.outputPath, "o", "", "Output path (database file, or pattern with {layer})")
	f.StringVar(&c.outputFormat, "of", "", "Output format (sqlite, layerfile)")
}

func mapMetadata(m *tmx.Map, source string) map[string]string {
	metadata := map[string]string{
		"source":      source,
		"orientation": string(m.Orientation),
		"width":       fmt.Sprint(m.Width),
		"height":      fmt.Sprint(m.Height),
		"tilewidth":   fmt.Sprint(m.TileWidth),
		"tileheight":  fmt.Sprint(m.TileHeight),
	}
	for _, p := range m.Properties {
		if p.Value != nil {
			metadata["property."+p.Name] = p.Value.String()
		}
	}
	return metadata
}

func exportLayers(m *tmx.Map, writer tile.LayerWriter, bar *progressbar.ProgressBar) error {
	for l := range m.TileLayers() {
		if err := writer.WriteLayer(l.Name, l.Width, l.Height, l.Tiles); err != nil {
			return err
		}
		bar.Add(1)
	}
	return writer.Finalize()
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	e := envFrom(args)

	m, err := tmx.LoadFile(c.inputPath, tmx.WithLogger(e.logger))
	if err != nil {
		log.Error().Err(err).Str("path", c.inputPath).Msg("failed to load map")
		return subcommands.ExitFailure
	}

	var writer tile.LayerWriter
	switch deduceFormat(c.outputFormat, c.outputPath) {
	case "sqlite":
		writer, err = sqlite.NewWriter(
			c.outputPath,
			sqlite.WithMetadata(mapMetadata(m, c.inputPath)),
			sqlite.WithLogger(e.logger),
		)
	case "layerfile":
		writer, err = layerfile.NewWriter(c.outputPath)
	default:
		log.Error().Str("format", c.outputFormat).Msg("invalid output format")
		return subcommands.ExitUsageError
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to create writer")
		return subcommands.ExitFailure
	}
	if closer, ok := writer.(io.Closer); ok {
		defer closer.Close()
	}

	count := 0
	for range m.TileLayers() {
		count++
	}
	bar := progressbar.New(count)
	err = exportLayers(m, writer, bar)
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Error().Err(err).Msg("export failed")
		return subcommands.ExitFailure
	}

	log.Info().Int("layers", count).Str("output", c.outputPath).Msg("layers exported")
	return subcommands.ExitSuccess
}
