// Package tile provides the tile reference type shared by all map layers
// and the interfaces used to read and write whole tile layers.
package tile

import (
	"errors"
	"fmt"
)

// GID is a map-wide global tile id. Zero means no tile.
type GID uint32

const (
	FlagHorizontal uint32 = 1 << 31
	FlagVertical   uint32 = 1 << 30
	FlagDiagonal   uint32 = 1 << 29

	flagMask = FlagHorizontal | FlagVertical | FlagDiagonal

	// MaxGID is the largest id that fits next to the flip flags.
	MaxGID GID = 1<<29 - 1
)

var ErrRange = errors.New("libtmx: tile id out of range")

// LayerTile is a single cell of a tile layer: a global tile id and
// the flips applied when the tile is drawn.
type LayerTile struct {
	GID   GID
	HFlip bool
	VFlip bool
	DFlip bool
}

func (t LayerTile) Empty() bool {
	return t.GID == 0
}

func (t LayerTile) String() string {
	flags := ""
	if t.HFlip {
		flags += "h"
	}
	if t.VFlip {
		flags += "v"
	}
	if t.DFlip {
		flags += "d"
	}
	if flags == "" {
		return fmt.Sprintf("%d", t.GID)
	}
	return fmt.Sprintf("%d/%s", t.GID, flags)
}

// Decode unpacks a wire value. Every 32-bit value is valid.
func Decode(value uint32) LayerTile {
	return LayerTile{
		GID:   GID(value &^ flagMask),
		HFlip: value&FlagHorizontal != 0,
		VFlip: value&FlagVertical != 0,
		DFlip: value&FlagDiagonal != 0,
	}
}

// Encode packs t into its wire value.
// It fails with ErrRange if the id does not fit in 29 bits.
func Encode(t LayerTile) (uint32, error) {
	if t.GID > MaxGID {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrRange, t.GID, MaxGID)
	}
	value := uint32(t.GID)
	if t.HFlip {
		value |= FlagHorizontal
	}
	if t.VFlip {
		value |= FlagVertical
	}
	if t.DFlip {
		value |= FlagDiagonal
	}
	return value, nil
}

// LayerWriter defines an interface for exporting tile layers.
type LayerWriter interface {
	// WriteLayer writes a dense row-major grid of width*height tiles.
	WriteLayer(name string, width, height int, tiles []LayerTile) error

	// Finalize completes the writing process: flushes buffers, writes indices.
	// It must be called before closing the LayerWriter.
	Finalize() error
}

type LayerReader interface {
	// ReadLayer reads the grid of a single layer.
	// If the layer does not exist, it returns an empty slice with no error.
	ReadLayer(name string) ([]LayerTile, error)
}

type Visitor interface {
	// VisitTiles calls the visitor for every cell in row-major order,
	// passing the cell index. It stops at the first error.
	VisitTiles(visitor func(int, LayerTile) error) error
}
