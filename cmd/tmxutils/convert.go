package main

import (
	"context"
	"flag"

	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type convertCmd struct {
	inputPath   string
	outputPath  string
	encoding    string
	compression string
	strict      bool
}

func (c *convertCmd) Name() string     { return "convert" }
func (c *convertCmd) Synopsis() string { return "re-encode the tile layers of a map" }
func (c *convertCmd) Usage() string {
	return "tmxutils convert -i <path> -o <path> [-encoding csv|base64 -compression zlib|gzip|zstd]\n"
}
func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map path")
	f.StringVar(&c.outputPath, "o", "", "Output map path")
	f.StringVar(&c.encoding, "encoding", "", "Layer data encoding (csv, base64)")
	f.StringVar(&c.compression, "compression", "", "Layer data compression (zlib, gzip, zstd)")
	f.BoolVar(&c.strict, "strict", false, "Fail on unresolved tile references")
}

func (c *convertCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	e := envFrom(args)

	format, err := e.config.format(c.encoding, c.compression)
	if err != nil {
		log.Error().Err(err).Msg("invalid format")
		return subcommands.ExitUsageError
	}

	m, err := tmx.LoadFile(c.inputPath, tmx.WithLogger(e.logger))
	if err != nil {
		log.Error().Err(err).Str("path", c.inputPath).Msg("failed to load map")
		return subcommands.ExitFailure
	}

	opts := []tmx.Option{tmx.WithLogger(e.logger)}
	if format != nil {
		opts = append(opts, tmx.WithFormat(*format))
	}
	if c.strict {
		opts = append(opts, tmx.WithStrictReferences())
	}
	if err := tmx.SaveFile(c.outputPath, m, opts...); err != nil {
		log.Error().Err(err).Str("path", c.outputPath).Msg("failed to save map")
		return subcommands.ExitFailure
	}

	log.Info().Str("output", c.outputPath).Msg("map converted")
	return subcommands.ExitSuccess
}
