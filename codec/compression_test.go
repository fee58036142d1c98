package codec_test

import (
	"bytes"
	"testing"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	dataCases := []struct {
		Name string
		Data []byte
	}{
		{Name: "Repeat", Data: bytes.Repeat([]byte{42}, 100500)},
		{Name: "Foobar", Data: []byte("foobar")},
		{Name: "Empty", Data: []byte{}},
	}
	compressionCases := []struct {
		Name        string
		Compression codec.Compression
	}{
		{Name: "None", Compression: codec.CompressionNone},
		{Name: "Zlib", Compression: codec.CompressionZlib},
		{Name: "Gzip", Compression: codec.CompressionGzip},
		{Name: "Zstd", Compression: codec.CompressionZstd},
	}
	for _, dc := range dataCases {
		for _, cc := range compressionCases {
			t.Run(dc.Name+cc.Name, func(t *testing.T) {
				compressed, err := codec.Compress(dc.Data, cc.Compression)
				if err != nil {
					t.Fatalf("Compress failed: %v", err)
				}
				decompressed, err := codec.Decompress(compressed, cc.Compression, len(dc.Data))
				if err != nil {
					t.Fatalf("Decompress failed: %v", err)
				}
				if !cmp.Equal(dc.Data, decompressed) {
					t.Errorf("Decompress(Compress(input)) != input")
				}
			})
		}
	}
}

func TestCompressionUnsupported(t *testing.T) {
	_, err := codec.Compress([]byte("foobar"), codec.Compression(200))
	require.ErrorIs(t, err, codec.ErrConfig)

	_, err = codec.Decompress([]byte("foobar"), codec.Compression(200), 0)
	require.ErrorIs(t, err, codec.ErrConfig)
}
