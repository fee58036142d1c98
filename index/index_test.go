package index_test

import (
	"bytes"
	"testing"

	"github.com/eak1mov/go-libtmx/index"
	"github.com/eak1mov/go-libtmx/tile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFromGrid(t *testing.T) {
	tiles := []tile.LayerTile{{GID: 1}, {}, {}, {GID: 7, HFlip: true}, {}, {GID: 3}}
	items, err := index.FromGrid(2, 3, tiles)
	require.NoError(t, err)

	want := []index.Item{
		{X: 0, Y: 0, Layer: 2, Value: 1},
		{X: 0, Y: 1, Layer: 2, Value: 7 | tile.FlagHorizontal},
		{X: 2, Y: 1, Layer: 2, Value: 3},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("FromGrid mismatch (-want+got):\n%v", diff)
	}
	require.Equal(t, tile.LayerTile{GID: 7, HFlip: true}, items[1].Tile())

	_, err = index.FromGrid(0, 1, []tile.LayerTile{{GID: 1 << 29}})
	require.ErrorIs(t, err, tile.ErrRange)
}

func TestWriteReadAll(t *testing.T) {
	items := []index.Item{
		{X: 0, Y: 0, Layer: 0, Value: 1},
		{X: 5, Y: 9, Layer: 1, Value: 1<<31 | 42},
	}

	var buffer bytes.Buffer
	require.NoError(t, index.WriteAll(items, &buffer))
	require.Equal(t, 32, buffer.Len())

	got, err := index.ReadAll(buffer.Bytes())
	require.NoError(t, err)
	require.Equal(t, items, got)

	_, err = index.ReadAll(buffer.Bytes()[:20])
	require.ErrorIs(t, err, index.ErrInvalidIndex)
}

func TestSortHilbert(t *testing.T) {
	var items []index.Item
	for layer := range uint32(2) {
		for y := range uint32(4) {
			for x := range uint32(4) {
				items = append(items, index.Item{X: x, Y: y, Layer: 1 - layer, Value: 1})
			}
		}
	}
	require.NoError(t, index.SortHilbert(items))

	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		if a.Layer != b.Layer {
			require.Less(t, a.Layer, b.Layer)
			continue
		}
		// Consecutive cells along a Hilbert curve are neighbours.
		dx := int(a.X) - int(b.X)
		dy := int(a.Y) - int(b.Y)
		require.Equal(t, 1, dx*dx+dy*dy, "items %v and %v", a, b)
	}

	index.SortRowMajor(items)
	require.Equal(t, index.Item{X: 1, Y: 0, Layer: 0, Value: 1}, items[1])
}
