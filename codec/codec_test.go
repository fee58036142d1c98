package codec_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/internal"
	"github.com/eak1mov/go-libtmx/tile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var formatCases = []struct {
	Name   string
	Format codec.Format
}{
	{Name: "CSV", Format: codec.FormatCSV},
	{Name: "Base64", Format: codec.FormatBase64},
	{Name: "Zlib", Format: codec.FormatBase64Zlib},
	{Name: "Gzip", Format: codec.FormatBase64Gzip},
	{Name: "Zstd", Format: codec.FormatBase64Zstd},
}

func TestRoundTrip(t *testing.T) {
	for name, tiles := range internal.TileCases() {
		for _, fc := range formatCases {
			t.Run(name+fc.Name, func(t *testing.T) {
				text, err := codec.Encode(tiles, fc.Format)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				decoded, err := codec.Decode(text, fc.Format, len(tiles))
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if diff := cmp.Diff(tiles, decoded); diff != "" {
					t.Errorf("Decode(Encode(input)) mismatch (-want+got):\n%v", diff)
				}
			})
		}
	}
}

func TestDecodeZlibScenario(t *testing.T) {
	tiles := []tile.LayerTile{{GID: 1}, {GID: 0}, {GID: 5}, {GID: 7}}

	text, err := codec.Encode(tiles, codec.FormatBase64Zlib)
	require.NoError(t, err)

	decoded, err := codec.Decode(text, codec.FormatBase64Zlib, 4)
	require.NoError(t, err)
	require.Equal(t, tiles, decoded)
}

func TestEncodeRange(t *testing.T) {
	tiles := []tile.LayerTile{{GID: 1}, {GID: 0}, {GID: 5}, {GID: 1 << 29}}
	for _, fc := range formatCases {
		_, err := codec.Encode(tiles, fc.Format)
		require.ErrorIsf(t, err, tile.ErrRange, "format %v", fc.Format)
	}
}

func TestDecodeCSVWhitespace(t *testing.T) {
	want, err := codec.Decode("1,2,3,4", codec.FormatCSV, 4)
	require.NoError(t, err)

	for _, text := range []string{"1, 2,\n3, 4", "\n  1,2,\r\n3,4\n", "1 ,\t2 , 3 , 4"} {
		got, err := codec.Decode(text, codec.FormatCSV, 4)
		require.NoError(t, err)
		require.Equal(t, want, got, "input %q", text)
	}
}

func TestDecodeBase64Whitespace(t *testing.T) {
	tiles := []tile.LayerTile{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 4}}
	text, err := codec.Encode(tiles, codec.FormatBase64)
	require.NoError(t, err)

	wrapped := "\n   " + text[:7] + "\n   " + text[7:] + "\n  "
	got, err := codec.Decode(wrapped, codec.FormatBase64, 4)
	require.NoError(t, err)
	require.Equal(t, tiles, got)
}

func TestDecodeErrors(t *testing.T) {
	zeros := base64.StdEncoding.EncodeToString(make([]byte, 16))
	garbage := base64.StdEncoding.EncodeToString([]byte("definitely not deflate"))

	cases := []struct {
		Name   string
		Text   string
		Format codec.Format
		Count  int
		Err    error
	}{
		{"CSVToken", "1,x,3", codec.FormatCSV, 3, codec.ErrFormat},
		{"CSVEmptyToken", "1,,3", codec.FormatCSV, 3, codec.ErrFormat},
		{"CSVNegative", "1,-2", codec.FormatCSV, 2, codec.ErrFormat},
		{"CSVOverflow", "4294967296", codec.FormatCSV, 1, codec.ErrFormat},
		{"CSVCount", "1,2,3", codec.FormatCSV, 4, codec.ErrFormat},
		{"Base64Alphabet", "AAAA*AAA", codec.FormatBase64, 1, codec.ErrFormat},
		{"Base64Padding", "AAAAA", codec.FormatBase64, 1, codec.ErrFormat},
		{"Base64Count", zeros, codec.FormatBase64, 5, codec.ErrFormat},
		{"Base64Partial", base64.StdEncoding.EncodeToString(make([]byte, 6)), codec.FormatBase64, 1, codec.ErrFormat},
		{"ZlibGarbage", garbage, codec.FormatBase64Zlib, 1, codec.ErrCorruptData},
		{"GzipGarbage", garbage, codec.FormatBase64Gzip, 1, codec.ErrCorruptData},
		{"ZstdGarbage", garbage, codec.FormatBase64Zstd, 1, codec.ErrCorruptData},
		{"CSVCompressed", "1", codec.Format{Encoding: codec.EncodingCSV, Compression: codec.CompressionZlib}, 1, codec.ErrConfig},
		{"XML", "", codec.Format{Encoding: codec.EncodingXML}, 0, codec.ErrConfig},
		{"NegativeCount", "", codec.FormatCSV, -1, codec.ErrFormat},
		{"HugeCount", zeros, codec.FormatBase64Zlib, codec.MaxTiles + 1, codec.ErrFormat},
	}
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := codec.Decode(tc.Text, tc.Format, tc.Count)
			require.ErrorIs(t, err, tc.Err)
		})
	}
}

func TestDecodeChecksum(t *testing.T) {
	tiles := []tile.LayerTile{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 4}}
	cases := []struct {
		Format codec.Format
		Offset int // from the end of the stream
	}{
		{codec.FormatBase64Zlib, 1}, // adler32
		{codec.FormatBase64Gzip, 5}, // crc32, followed by the size
	}
	for _, tc := range cases {
		format := tc.Format
		text, err := codec.Encode(tiles, format)
		require.NoError(t, err)

		data, err := base64.StdEncoding.DecodeString(text)
		require.NoError(t, err)
		data[len(data)-tc.Offset] ^= 0xFF

		_, err = codec.Decode(base64.StdEncoding.EncodeToString(data), format, len(tiles))
		require.ErrorIsf(t, err, codec.ErrCorruptData, "format %v", format)
	}
}

func TestDecompressionBound(t *testing.T) {
	bomb := bytes.Repeat([]byte{0}, 1<<20)
	for _, compression := range []codec.Compression{codec.CompressionZlib, codec.CompressionGzip, codec.CompressionZstd} {
		compressed, err := codec.Compress(bomb, compression)
		require.NoError(t, err)
		require.Less(t, len(compressed)*codec.MaxExpansion, len(bomb))

		text := base64.StdEncoding.EncodeToString(compressed)
		_, err = codec.Decode(text, codec.Format{Encoding: codec.EncodingBase64, Compression: compression}, 4)
		require.ErrorIsf(t, err, codec.ErrCorruptData, "compression %v", compression)

		_, err = codec.Decompress(compressed, compression, 0)
		require.ErrorIsf(t, err, codec.ErrCorruptData, "compression %v", compression)

		// A large declared grid raises the limit only up to the grid size.
		format := codec.Format{Encoding: codec.EncodingBase64, Compression: compression}
		_, err = codec.Decode(text, format, 1<<16)
		require.ErrorIsf(t, err, codec.ErrCorruptData, "compression %v", compression)

		_, err = codec.Decode(text, format, 2*codec.MaxTiles)
		require.ErrorIsf(t, err, codec.ErrFormat, "compression %v", compression)
	}
}

func TestDecodeLongerThanGrid(t *testing.T) {
	tiles := []tile.LayerTile{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 4}, {GID: 5}, {GID: 6}, {GID: 7}, {GID: 8}}
	for _, fc := range formatCases[2:] {
		text, err := codec.Encode(tiles, fc.Format)
		require.NoError(t, err)

		_, err = codec.Decode(text, fc.Format, 4)
		require.ErrorIsf(t, err, codec.ErrCorruptData, "format %v", fc.Format)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		Encoding, Compression string
		Want                  codec.Format
	}{
		{"", "", codec.FormatCSV},
		{"csv", "", codec.FormatCSV},
		{"base64", "", codec.FormatBase64},
		{"base64", "zlib", codec.FormatBase64Zlib},
		{"base64", "gzip", codec.FormatBase64Gzip},
		{"base64", "zstd", codec.FormatBase64Zstd},
	}
	for _, tc := range cases {
		got, err := codec.ParseFormat(tc.Encoding, tc.Compression)
		require.NoError(t, err)
		require.Equal(t, tc.Want, got)

		encoding, compression := got.Attrs()
		if tc.Encoding != "" {
			require.Equal(t, tc.Encoding, encoding)
		}
		require.Equal(t, tc.Compression, compression)
	}

	for _, bad := range [][2]string{{"hex", ""}, {"base64", "lz4"}, {"csv", "gzip"}} {
		_, err := codec.ParseFormat(bad[0], bad[1])
		require.ErrorIs(t, err, codec.ErrConfig, "%q", bad)
	}
}
