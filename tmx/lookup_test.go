package tmx_test

import (
	"testing"

	"github.com/eak1mov/go-libtmx/tile"
	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/stretchr/testify/require"
)

func lookupMap() *tmx.Map {
	m := tmx.New(2, 2, 16, 16)
	// Deliberately out of order.
	m.Tilesets = []*tmx.Tileset{
		tmx.NewTileset(200, "third", 16, 16, 100),
		tmx.NewTileset(1, "first", 16, 16, 49),
		tmx.NewTileset(50, "second", 16, 16, 150),
	}
	return m
}

func TestLookup(t *testing.T) {
	m := lookupMap()

	cases := []struct {
		GID     tile.GID
		Tileset string
		Local   int
	}{
		{1, "first", 0},
		{49, "first", 48},
		{50, "second", 0},
		{199, "second", 149},
		{200, "third", 0},
		{299, "third", 99},
	}
	for _, tc := range cases {
		ts, local, err := m.Lookup(tc.GID)
		require.NoError(t, err, "gid %d", tc.GID)
		require.Equal(t, tc.Tileset, ts.Name, "gid %d", tc.GID)
		require.Equal(t, tc.Local, local, "gid %d", tc.GID)
	}

	for _, gid := range []tile.GID{0, 300, 1000} {
		_, _, err := m.Lookup(gid)
		require.ErrorIs(t, err, tmx.ErrReference, "gid %d", gid)
	}
}

func TestLookupBeforeFirstTileset(t *testing.T) {
	r := tmx.NewResolver([]*tmx.Tileset{tmx.NewTileset(10, "late", 16, 16, 4)})
	_, _, err := r.Lookup(9)
	require.ErrorIs(t, err, tmx.ErrReference)

	_, _, err = tmx.NewResolver(nil).Lookup(1)
	require.ErrorIs(t, err, tmx.ErrReference)
}

func TestLookupImageCollection(t *testing.T) {
	ts := tmx.NewTileset(1, "props", 32, 32, 0)
	ts.Tile(0).Image = &tmx.Image{Source: "cactus.png"}
	ts.Tile(2).Image = &tmx.Image{Source: "rock.png"}
	r := tmx.NewResolver([]*tmx.Tileset{ts})

	_, local, err := r.Lookup(3)
	require.NoError(t, err)
	require.Equal(t, 2, local)

	_, _, err = r.Lookup(2)
	require.ErrorIs(t, err, tmx.ErrReference)
}
