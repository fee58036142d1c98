package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-libtmx/internal"
	"github.com/eak1mov/go-libtmx/sqlite"
	"github.com/eak1mov/go-libtmx/tile"
	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestWriterReader(t *testing.T) {
	layers := map[string][]tile.LayerTile{}
	for name, tiles := range internal.TileCases() {
		layers[name] = tiles
	}

	filePath := filepath.Join(t.TempDir(), "map.sqlite")
	writerMetadata := map[string]string{"source": "desert.tmx", "orientation": "orthogonal"}

	writer, err := sqlite.NewWriter(filePath, sqlite.WithMetadata(writerMetadata))
	require.NoError(t, err)
	defer writer.Close()

	var names []string
	for name, tiles := range internal.TileCases() {
		// A single row keeps every case a valid grid.
		require.NoError(t, writer.WriteLayer(name, len(tiles), min(len(tiles), 1), tiles))
		names = append(names, name)
	}
	require.NoError(t, writer.Finalize())

	reader, err := sqlite.NewReader(filePath)
	require.NoError(t, err)
	defer reader.Close()

	readerMetadata, err := reader.ReadMetadata()
	require.NoError(t, err)
	require.Equal(t, writerMetadata, readerMetadata)

	gotNames, err := reader.LayerNames()
	require.NoError(t, err)
	require.Equal(t, names, gotNames)

	for name, want := range layers {
		got, err := reader.ReadLayer(name)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ReadLayer(%q) mismatch (-want+got):\n%v", name, diff)
		}
	}

	missing, err := reader.ReadLayer("missing")
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestWriteLayerErrors(t *testing.T) {
	writer, err := sqlite.NewWriter(filepath.Join(t.TempDir(), "map.sqlite"))
	require.NoError(t, err)
	defer writer.Close()

	require.Error(t, writer.WriteLayer("short", 2, 2, make([]tile.LayerTile, 3)))
	require.ErrorIs(t, writer.WriteLayer("range", 1, 1, []tile.LayerTile{{GID: 1 << 29}}), tile.ErrRange)
}
