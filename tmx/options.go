package tmx

import (
	"log/slog"

	"github.com/eak1mov/go-libtmx/codec"
)

// FileAccessFunc returns the contents of a file referenced by a document,
// such as an external tileset. The path is as written in the document.
type FileAccessFunc func(path string) ([]byte, error)

type config struct {
	Logger     *slog.Logger
	FileAccess FileAccessFunc
	Format     *codec.Format
	Strict     bool
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

// WithFileAccess sets how Load reads external tilesets.
// Without it, maps with external tilesets fail to load.
func WithFileAccess(fileAccess FileAccessFunc) Option {
	return func(c *config) { c.FileAccess = fileAccess }
}

// WithFormat makes Save write every tile layer with the given format
// instead of the format stored in each layer.
func WithFormat(format codec.Format) Option {
	return func(c *config) { c.Format = &format }
}

// WithStrictReferences makes Save fail with ErrReference when a cell or a
// tile object refers to a global id no tileset owns.
func WithStrictReferences() Option {
	return func(c *config) { c.Strict = true }
}

func newConfig(opts []Option) config {
	c := config{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
