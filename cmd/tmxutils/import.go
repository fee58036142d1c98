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

type importCmd struct {
	inputFormat  string
	inputPath    string
	templatePath string
	outputPath   string
}

func (c *importCmd) Name() string     { return "import" }
func (c *importCmd) Synopsis() string { return "replace the tile layers of a map with exported ones" }
func (c *importCmd) Usage() string {
	return "tmxutils import -i <path> -m <template map> -o <path> [-if sqlite|layerfile]\n"
}
func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input path (database file, or pattern with {layer})")
	f.StringVar(&c.inputFormat, "if", "", "Input format (sqlite, layerfile)")
	f.StringVar(&c.templatePath, "m", "", "Template map path")
	f.StringVar(&c.outputPath, "o", "", "Output map path")
}

// importLayers replaces the grid of every tile layer of m found in reader.
// Layers missing from reader are kept; it returns the number replaced.
func importLayers(m *tmx.Map, reader tile.LayerReader, bar *progressbar.ProgressBar) (int, error) {
	replaced := 0
	for l := range m.TileLayers() {
		tiles, err := reader.ReadLayer(l.Name)
		if err != nil {
			return replaced, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		bar.Add(1)
		if len(tiles) == 0 && len(l.Tiles) != 0 {
			log.Debug().Str("layer", l.Name).Msg("layer not found, keeping template")
			continue
		}
		if len(tiles) != l.Width*l.Height {
			return replaced, fmt.Errorf("layer %q: %w: got %d tiles, want %d", l.Name, tmx.ErrFormat, len(tiles), l.Width*l.Height)
		}
		l.Tiles = tiles
		replaced++
	}
	return replaced, nil
}

func (c *importCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	e := envFrom(args)

	m, err := tmx.LoadFile(c.templatePath, tmx.WithLogger(e.logger))
	if err != nil {
		log.Error().Err(err).Str("path", c.templatePath).Msg("failed to load template map")
		return subcommands.ExitFailure
	}

	var reader tile.LayerReader
	switch deduceFormat(c.inputFormat, c.inputPath) {
	case "sqlite":
		reader, err = sqlite.NewReader(c.inputPath)
	case "layerfile":
		reader, err = layerfile.NewReader(c.inputPath)
	default:
		log.Error().Str("format", c.inputFormat).Msg("invalid input format")
		return subcommands.ExitUsageError
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to open input")
		return subcommands.ExitFailure
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	bar := progressbar.New(-1)
	replaced, err := importLayers(m, reader, bar)
	bar.Finish()
	fmt.Println()
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		return subcommands.ExitFailure
	}

	// Imported cells may refer to anything; check before writing.
	if err := m.Validate(); err != nil {
		log.Error().Err(err).Msg("imported map is invalid")
		return subcommands.ExitFailure
	}
	if err := tmx.SaveFile(c.outputPath, m, tmx.WithLogger(e.logger)); err != nil {
		log.Error().Err(err).Str("path", c.outputPath).Msg("failed to save map")
		return subcommands.ExitFailure
	}

	log.Info().Int("layers", replaced).Str("output", c.outputPath).Msg("layers imported")
	return subcommands.ExitSuccess
}
