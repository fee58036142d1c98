// Package index provides a flat binary index of the non-empty cells of
// tile layers, easily portable to other languages and utilities.
package index

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"slices"

	"github.com/eak1mov/go-libtmx/tile"
	"github.com/google/hilbert"
)

var ErrInvalidIndex = errors.New("libtmx: invalid index data")

// Item represents a single non-empty cell. Value is the wire value of the
// cell: the global tile id with its flip flags.
type Item struct {
	X     uint32
	Y     uint32
	Layer uint32
	Value uint32
}

func (i Item) Tile() tile.LayerTile {
	return tile.Decode(i.Value)
}

// FromGrid returns the items of a row-major grid, skipping cells whose
// wire value is zero.
func FromGrid(layer uint32, width int, tiles []tile.LayerTile) ([]Item, error) {
	if width <= 0 && len(tiles) > 0 {
		return nil, fmt.Errorf("%w: grid width %d", ErrInvalidIndex, width)
	}
	items := make([]Item, 0)
	for i, t := range tiles {
		value, err := tile.Encode(t)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		if value == 0 {
			continue
		}
		items = append(items, Item{
			X:     uint32(i % width),
			Y:     uint32(i / width),
			Layer: layer,
			Value: value,
		})
	}
	return items, nil
}

func WriteAll(items []Item, writer io.Writer) error {
	return binary.Write(writer, binary.LittleEndian, items)
}

func ReadAll(indexData []byte) ([]Item, error) {
	size := binary.Size(Item{})
	if len(indexData)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of items", ErrInvalidIndex, len(indexData))
	}
	items := make([]Item, len(indexData)/size)

	err := binary.Read(bytes.NewReader(indexData), binary.LittleEndian, items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// SortRowMajor orders items by layer, then row, then column.
func SortRowMajor(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		return cmp.Or(
			cmp.Compare(a.Layer, b.Layer),
			cmp.Compare(a.Y, b.Y),
			cmp.Compare(a.X, b.X),
		)
	})
}

// SortHilbert orders items by layer, then along a Hilbert curve covering
// all item coordinates, so that cells close on the map stay close in the
// index.
func SortHilbert(items []Item) error {
	side := uint32(1)
	for _, item := range items {
		side = max(side, item.X+1, item.Y+1)
	}
	if side > 1<<15 {
		return fmt.Errorf("%w: coordinates too large for hilbert order", ErrInvalidIndex)
	}
	side = 1 << bits.Len32(side-1) // next power of two

	h, err := hilbert.NewHilbert(int(side))
	if err != nil {
		return err
	}

	codes := make(map[Item]int, len(items))
	for _, item := range items {
		code, err := h.MapInverse(int(item.X), int(item.Y))
		if err != nil {
			return err
		}
		codes[item] = code
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Or(
			cmp.Compare(a.Layer, b.Layer),
			cmp.Compare(codes[a], codes[b]),
		)
	})
	return nil
}
