package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/index"
	"github.com/eak1mov/go-libtmx/layerfile"
	"github.com/eak1mov/go-libtmx/sqlite"
	"github.com/eak1mov/go-libtmx/tile"
	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/schollz/progressbar/v3"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func testMap() *tmx.Map {
	m := tmx.New(3, 2, 16, 16)
	m.Properties.Set("title", tmx.StringValue("test"))
	m.Tilesets = []*tmx.Tileset{tmx.NewTileset(1, "base", 16, 16, 16)}
	ground := tmx.NewTileLayer("ground", 3, 2)
	ground.Tiles = []tile.LayerTile{{GID: 1}, {}, {GID: 2}, {}, {GID: 3, HFlip: true}, {}}
	top := tmx.NewTileLayer("top", 3, 2)
	top.Tiles[5] = tile.LayerTile{GID: 16}
	objects := tmx.NewObjectGroup("objects")
	objects.Objects = []*tmx.Object{tmx.NewObject(1, "a", 0, 0, 1, 1)}
	m.Layers = []tmx.Layer{ground.Layer(), tmx.NewGroupLayer("group", top.Layer(), objects.Layer()).Layer()}
	return m
}

func quietBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1, progressbar.OptionSetWriter(io.Discard))
}

func TestDeduceFormat(t *testing.T) {
	cases := []struct{ Format, Path, Want string }{
		{"", "out/{layer}.bin", "layerfile"},
		{"", "map.sqlite", "sqlite"},
		{"", "map.db", "sqlite"},
		{"", "map.tmx", "tmx"},
		{"", "map.bin", ""},
		{"sqlite", "map.bin", "sqlite"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.Want, deduceFormat(tc.Format, tc.Path), "%q %q", tc.Format, tc.Path)
	}
}

func TestConfig(t *testing.T) {
	config, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), config)

	path := filepath.Join(t.TempDir(), "tmxutils.yaml")
	require.NoError(t, os.WriteFile(path, []byte("encoding: base64\ncompression: zstd\nindex_order: hilbert\n"), 0644))
	config, err = loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{Encoding: "base64", Compression: "zstd", IndexOrder: "hilbert"}, config)

	format, err := config.format("", "")
	require.NoError(t, err)
	require.Equal(t, codec.FormatBase64Zstd, *format)

	format, err = config.format("csv", "")
	require.NoError(t, err)
	require.Equal(t, codec.FormatCSV, *format)

	format, err = defaultConfig().format("", "")
	require.NoError(t, err)
	require.Nil(t, format)

	_, err = config.format("csv", "zlib")
	require.ErrorIs(t, err, codec.ErrConfig)
}

func TestSummary(t *testing.T) {
	s := summarize(testMap())
	require.Equal(t, map[string]string{"title": "test"}, s.Properties)
	require.Equal(t, []layerSummary{
		{Name: "ground", Kind: "layer", Format: "base64+zlib", Cells: 3},
		{Name: "group", Kind: "group"},
		{Name: "top", Kind: "layer", Depth: 1, Format: "base64+zlib", Cells: 1},
		{Name: "objects", Kind: "objectgroup", Depth: 1, Objects: 1},
	}, s.Layers)

	var buffer bytes.Buffer
	require.NoError(t, writeSummary(&buffer, s, "yaml"))
	var fromYAML mapSummary
	require.NoError(t, yaml.Unmarshal(buffer.Bytes(), &fromYAML))
	require.Equal(t, s, fromYAML)

	buffer.Reset()
	require.NoError(t, writeSummary(&buffer, s, "msgpack"))
	var fromMsgpack mapSummary
	require.NoError(t, msgpack.Unmarshal(buffer.Bytes(), &fromMsgpack))
	require.Equal(t, s, fromMsgpack)

	require.Error(t, writeSummary(&buffer, s, "xml"))
}

func TestCollectItems(t *testing.T) {
	items, err := collectItems(testMap())
	require.NoError(t, err)
	require.Len(t, items, 4)

	require.NoError(t, sortItems(items, "hilbert"))
	require.Equal(t, uint32(1), items[len(items)-1].Layer)

	sortItems(items, "row")
	require.Equal(t, index.Item{X: 0, Y: 0, Layer: 0, Value: 1}, items[0])
	require.Equal(t, index.Item{X: 2, Y: 1, Layer: 1, Value: 16}, items[3])
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	source := testMap()

	for _, tc := range []struct {
		Name   string
		Writer func() (tile.LayerWriter, error)
		Reader func() (tile.LayerReader, error)
	}{
		{
			"LayerFile",
			func() (tile.LayerWriter, error) { return layerfile.NewWriter(filepath.Join(dir, "layers", "{layer}.bin")) },
			func() (tile.LayerReader, error) { return layerfile.NewReader(filepath.Join(dir, "layers", "{layer}.bin")) },
		},
		{
			"SQLite",
			func() (tile.LayerWriter, error) {
				return sqlite.NewWriter(filepath.Join(dir, "map.sqlite"), sqlite.WithMetadata(mapMetadata(source, "test.tmx")))
			},
			func() (tile.LayerReader, error) { return sqlite.NewReader(filepath.Join(dir, "map.sqlite")) },
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			writer, err := tc.Writer()
			require.NoError(t, err)
			require.NoError(t, exportLayers(source, writer, quietBar()))
			if closer, ok := writer.(io.Closer); ok {
				require.NoError(t, closer.Close())
			}

			target := testMap()
			for l := range target.TileLayers() {
				clear(l.Tiles)
			}

			reader, err := tc.Reader()
			require.NoError(t, err)
			if closer, ok := reader.(io.Closer); ok {
				defer closer.Close()
			}
			replaced, err := importLayers(target, reader, quietBar())
			require.NoError(t, err)
			require.Equal(t, 2, replaced)
			require.NoError(t, target.Validate())

			for l := range source.TileLayers() {
				got, ok := target.TileLayer(l.Name)
				require.True(t, ok)
				require.Equal(t, l.Tiles, got.Tiles)
			}
		})
	}
}
