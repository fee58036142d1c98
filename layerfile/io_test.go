package layerfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/internal"
	"github.com/eak1mov/go-libtmx/layerfile"
	"github.com/eak1mov/go-libtmx/tile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWriterReader(t *testing.T) {
	rootDir := t.TempDir()
	pattern := filepath.Join(rootDir, "layers", "{layer}.bin")

	layers := map[string][]tile.LayerTile{}
	writer, err := layerfile.NewWriter(pattern)
	require.NoError(t, err)
	for name, tiles := range internal.TileCases() {
		layers[name] = tiles
		require.NoError(t, writer.WriteLayer(name, 1, len(tiles), tiles))
	}
	require.NoError(t, writer.Finalize())

	// Files not matching the pattern are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, "layers", "notes.txt"), []byte("x"), 0644))

	reader, err := layerfile.NewReader(pattern)
	require.NoError(t, err)

	visited := map[string][]tile.LayerTile{}
	err = reader.VisitLayers(func(name string, tiles []tile.LayerTile) error {
		visited[name] = tiles
		return nil
	})
	require.NoError(t, err)
	if diff := cmp.Diff(layers, visited); diff != "" {
		t.Errorf("VisitLayers mismatch (-want+got):\n%v", diff)
	}

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

func TestErrors(t *testing.T) {
	_, err := layerfile.NewWriter(filepath.Join(t.TempDir(), "out.bin"))
	require.ErrorIs(t, err, layerfile.ErrInvalidPattern)

	_, err = layerfile.NewReader("{layer}/{layer}.bin")
	require.ErrorIs(t, err, layerfile.ErrInvalidPattern)

	writer, err := layerfile.NewWriter(filepath.Join(t.TempDir(), "{layer}.bin"))
	require.NoError(t, err)
	require.ErrorIs(t, writer.WriteLayer("../escape", 1, 1, []tile.LayerTile{{GID: 1}}), layerfile.ErrInvalidName)
	require.ErrorIs(t, writer.WriteLayer("big", 1, 1, []tile.LayerTile{{GID: 1 << 29}}), tile.ErrRange)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.bin"), []byte{1, 2, 3}, 0644))
	reader, err := layerfile.NewReader(filepath.Join(dir, "{layer}.bin"))
	require.NoError(t, err)
	_, err = reader.ReadLayer("odd")
	require.ErrorIs(t, err, codec.ErrFormat)
}
