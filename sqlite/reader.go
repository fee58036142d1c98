// Package sqlite provides API for storing the tile layers of a map in a
// SQLite database, one row per non-empty cell.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-libtmx/tile"
)

// Reader implements tile.LayerReader interface for SQLite databases.
type Reader struct {
	db *sql.DB
}

// NewReader creates a new Reader for the given database file path.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

// LayerNames returns the names of the stored layers in write order.
func (r *Reader) LayerNames() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM layers ORDER BY layer_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Reader) ReadLayer(name string) ([]tile.LayerTile, error) {
	var layerID, width, height int
	err := r.db.QueryRow("SELECT layer_id, width, height FROM layers WHERE name = ?", name).Scan(&layerID, &width, &height)
	if errors.Is(err, sql.ErrNoRows) {
		return make([]tile.LayerTile, 0), nil
	}
	if err != nil {
		return nil, err
	}

	tiles := make([]tile.LayerTile, width*height)
	rows, err := r.db.Query("SELECT x, y, gid, flags FROM cells WHERE layer_id = ?", layerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var x, y int
		var gid, flags uint32
		if err := rows.Scan(&x, &y, &gid, &flags); err != nil {
			return nil, err
		}
		if x < 0 || y < 0 || x >= width || y >= height {
			return nil, fmt.Errorf("libtmx: layer %q cell (%d, %d) outside %dx%d", name, x, y, width, height)
		}
		tiles[y*width+x] = tile.Decode(gid | flags<<29)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tiles, nil
}
