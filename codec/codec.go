package codec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/eak1mov/go-libtmx/tile"
)

const wordSize = 4

// MaxTiles is the largest grid a payload may describe.
const MaxTiles = 1 << 24

// checkCount reports whether a grid of count cells can be decoded.
func checkCount(count int) error {
	if count < 0 || count > MaxTiles {
		return fmt.Errorf("%w: %d tiles exceeds the limit of %d", ErrFormat, count, MaxTiles)
	}
	return nil
}

// Decode converts a data payload into exactly count tiles.
func Decode(text string, format Format, count int) ([]tile.LayerTile, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if err := checkCount(count); err != nil {
		return nil, err
	}

	var tiles []tile.LayerTile
	var err error
	switch format.Encoding {
	case EncodingCSV:
		tiles, err = decodeCSV(text)
	case EncodingBase64:
		tiles, err = decodeBase64(text, format.Compression, count)
	default:
		return nil, fmt.Errorf("%w: encoding %v has no text payload", ErrConfig, format.Encoding)
	}
	if err != nil {
		return nil, err
	}

	if len(tiles) != count {
		return nil, fmt.Errorf("%w: tile count does not match layer dimensions (got %d, want %d)", ErrFormat, len(tiles), count)
	}
	return tiles, nil
}

// Encode converts tiles into a data payload.
func Encode(tiles []tile.LayerTile, format Format) (string, error) {
	if err := format.Validate(); err != nil {
		return "", err
	}

	switch format.Encoding {
	case EncodingCSV:
		return encodeCSV(tiles)
	case EncodingBase64:
		data, err := Pack(tiles)
		if err != nil {
			return "", err
		}
		data, err = Compress(data, format.Compression)
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return "", fmt.Errorf("%w: encoding %v has no text payload", ErrConfig, format.Encoding)
}

// Pack concatenates the wire values of tiles as little-endian words.
func Pack(tiles []tile.LayerTile) ([]byte, error) {
	buffer := make([]byte, 0, len(tiles)*wordSize)
	for i, t := range tiles {
		value, err := tile.Encode(t)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		buffer = binary.LittleEndian.AppendUint32(buffer, value)
	}
	return buffer, nil
}

// Unpack is the inverse of Pack.
func Unpack(data []byte) ([]tile.LayerTile, error) {
	if len(data)%wordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of tiles", ErrFormat, len(data))
	}
	tiles := make([]tile.LayerTile, len(data)/wordSize)
	for i := range tiles {
		tiles[i] = tile.Decode(binary.LittleEndian.Uint32(data[i*wordSize:]))
	}
	return tiles, nil
}

func decodeCSV(text string) ([]tile.LayerTile, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []tile.LayerTile{}, nil
	}

	tokens := strings.Split(text, ",")
	tiles := make([]tile.LayerTile, len(tokens))
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		value, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: csv token %d (%q) is not a tile value", ErrFormat, i, token)
		}
		tiles[i] = tile.Decode(uint32(value))
	}
	return tiles, nil
}

func encodeCSV(tiles []tile.LayerTile) (string, error) {
	var b strings.Builder
	b.Grow(len(tiles) * 2)
	for i, t := range tiles {
		value, err := tile.Encode(t)
		if err != nil {
			return "", fmt.Errorf("tile %d: %w", i, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(value), 10))
	}
	return b.String(), nil
}

func decodeBase64(text string, compression Compression, count int) ([]tile.LayerTile, error) {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrFormat, err)
	}

	expected := count * wordSize
	limit := max(MaxExpansion*len(data), expected)
	data, err = Decompress(data, compression, limit)
	if err != nil {
		return nil, err
	}
	if compression != CompressionNone && len(data) > expected {
		return nil, fmt.Errorf("%w: %v: decompressed %d bytes, layer holds %d", ErrCorruptData, compression, len(data), expected)
	}

	return Unpack(data)
}
