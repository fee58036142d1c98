package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// env is shared by all subcommands.
type env struct {
	config Config
	logger *slog.Logger // passed to library calls
}

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configPath := flag.String("config", "", "Optional YAML config file")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&convertCmd{}, "")
	subcommands.Register(&inspectCmd{}, "")
	subcommands.Register(&exportCmd{}, "")
	subcommands.Register(&importCmd{}, "")
	subcommands.Register(&exportIndexCmd{}, "")

	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	e := &env{logger: slog.New(slog.DiscardHandler)}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Error().Err(err).Str("path", *configPath).Msg("failed to load config")
		os.Exit(int(subcommands.ExitFailure))
	}
	e.config = config
	log.Debug().Interface("config", config).Msg("config loaded")

	os.Exit(int(subcommands.Execute(context.Background(), e)))
}

func envFrom(args []any) *env {
	return args[0].(*env)
}
