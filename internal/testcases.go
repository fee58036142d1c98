// Package internal holds fixtures shared by the package tests.
package internal

import (
	"iter"
	"math/rand/v2"

	"github.com/eak1mov/go-libtmx/tile"
)

// TileCases yields named tile sequences covering the edge cases of the
// wire format: empty grids, all-empty cells, maximum ids with every flip.
func TileCases() iter.Seq2[string, []tile.LayerTile] {
	return func(yield func(string, []tile.LayerTile) bool) {
		maxTile := tile.LayerTile{GID: tile.MaxGID, HFlip: true, VFlip: true, DFlip: true}

		random := rand.New(rand.NewPCG(42, 1024))
		randomTiles := make([]tile.LayerTile, 64*48)
		for i := range randomTiles {
			randomTiles[i] = tile.Decode(random.Uint32())
		}

		cases := []struct {
			name  string
			tiles []tile.LayerTile
		}{
			{"Empty", []tile.LayerTile{}},
			{"Single", []tile.LayerTile{{GID: 1}}},
			{"MaxFlags", []tile.LayerTile{maxTile}},
			{"Zeros", make([]tile.LayerTile, 100*100)},
			{"Small", []tile.LayerTile{{GID: 1}, {}, {GID: 5}, {GID: 7}}},
			{"Flips", []tile.LayerTile{
				{GID: 3, HFlip: true},
				{GID: 3, VFlip: true},
				{GID: 3, DFlip: true},
				{GID: 3, HFlip: true, VFlip: true},
				maxTile,
				{},
			}},
			{"Random", randomTiles},
		}
		for _, tc := range cases {
			if !yield(tc.name, tc.tiles) {
				return
			}
		}
	}
}
