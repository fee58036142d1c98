package main

import (
	"bufio"
	"context"
	"flag"
	"os"

	"github.com/eak1mov/go-libtmx/index"
	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type exportIndexCmd struct {
	inputPath  string
	outputPath string
	order      string
}

func (c *exportIndexCmd) Name() string     { return "export_index" }
func (c *exportIndexCmd) Synopsis() string { return "export a binary index of the non-empty cells of a map" }
func (c *exportIndexCmd) Usage() string {
	return "tmxutils export_index -i <path> -o <path> [-order row|hilbert]\n"
}
func (c *exportIndexCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map path")
	f.StringVar(&c.outputPath, "o", "", "Output index file path")
	f.StringVar(&c.order, "order", "", "Item order (row, hilbert)")
}

// collectItems indexes every tile layer of m; the layer number is the
// position of the layer in m.TileLayers.
func collectItems(m *tmx.Map) ([]index.Item, error) {
	items := make([]index.Item, 0)
	layer := uint32(0)
	for l := range m.TileLayers() {
		layerItems, err := index.FromGrid(layer, l.Width, l.Tiles)
		if err != nil {
			return nil, err
		}
		items = append(items, layerItems...)
		layer++
	}
	return items, nil
}

func sortItems(items []index.Item, order string) error {
	switch order {
	case "hilbert":
		return index.SortHilbert(items)
	default:
		index.SortRowMajor(items)
		return nil
	}
}

func (c *exportIndexCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	e := envFrom(args)

	m, err := tmx.LoadFile(c.inputPath, tmx.WithLogger(e.logger))
	if err != nil {
		log.Error().Err(err).Str("path", c.inputPath).Msg("failed to load map")
		return subcommands.ExitFailure
	}

	items, err := collectItems(m)
	if err != nil {
		log.Error().Err(err).Msg("failed to index map")
		return subcommands.ExitFailure
	}

	order := c.order
	if order == "" {
		order = e.config.IndexOrder
	}
	if err := sortItems(items, order); err != nil {
		log.Error().Err(err).Msg("failed to sort index")
		return subcommands.ExitFailure
	}

	file, err := os.Create(c.outputPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to create output")
		return subcommands.ExitFailure
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := index.WriteAll(items, writer); err != nil {
		log.Error().Err(err).Msg("failed to write index")
		return subcommands.ExitFailure
	}
	if err := writer.Flush(); err != nil {
		log.Error().Err(err).Msg("failed to write index")
		return subcommands.ExitFailure
	}

	log.Info().Int("items", len(items)).Str("order", order).Msg("index exported")
	return subcommands.ExitSuccess
}
