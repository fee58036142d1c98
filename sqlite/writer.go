package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-libtmx/tile"
)

// Writer implements tile.LayerWriter interface for SQLite databases.
// Only cells with a non-zero wire value are stored.
type Writer struct {
	db       *sql.DB
	tx       *sql.Tx
	layerSeq int
	logger   *slog.Logger
}

type writerConfig struct {
	Metadata map[string]string
	Logger   *slog.Logger
}

type WriterOption func(*writerConfig)

func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { c.Metadata = metadata }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// NewWriter creates a new database file and prepares it for writing layers.
func NewWriter(filePath string, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE layers (
			layer_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			width INTEGER,
			height INTEGER
		);
		CREATE TABLE cells (
			layer_id INTEGER,
			x INTEGER,
			y INTEGER,
			gid INTEGER,
			flags INTEGER
		);
	`)
	if err != nil {
		return nil, err
	}

	for k, v := range config.Metadata {
		_, err = db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v)
		if err != nil {
			return nil, err
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	return &Writer{db: db, tx: tx, logger: config.Logger}, nil
}

func (w *Writer) Close() error {
	var errs []error
	if w.tx != nil {
		errs = append(errs, w.tx.Rollback())
	}
	return errors.Join(append(errs, w.db.Close())...)
}

func (w *Writer) WriteLayer(name string, width, height int, tiles []tile.LayerTile) error {
	if len(tiles) != width*height {
		return fmt.Errorf("libtmx: layer %q has %d tiles, want %d", name, len(tiles), width*height)
	}

	w.layerSeq++
	layerID := w.layerSeq
	_, err := w.tx.Exec("INSERT INTO layers (layer_id, name, width, height) VALUES (?, ?, ?, ?)", layerID, name, width, height)
	if err != nil {
		return err
	}

	stmt, err := w.tx.Prepare("INSERT INTO cells (layer_id, x, y, gid, flags) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	count := 0
	for i, t := range tiles {
		value, err := tile.Encode(t)
		if err != nil {
			return fmt.Errorf("layer %q cell %d: %w", name, i, err)
		}
		if value == 0 {
			continue
		}
		gid := value &^ (tile.FlagHorizontal | tile.FlagVertical | tile.FlagDiagonal)
		flags := value >> 29
		if _, err := stmt.Exec(layerID, i%width, i/width, gid, flags); err != nil {
			return err
		}
		count++
	}

	w.logger.Debug("libtmx: layer written", "layer", name, "cells", count)
	return nil
}

func (w *Writer) Finalize() error {
	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		return err
	}

	w.logger.Debug("libtmx: creating index")
	_, err = w.db.Exec("CREATE UNIQUE INDEX cell_index ON cells (layer_id, y, x)")

	w.logger.Debug("libtmx: done!")
	return err
}
