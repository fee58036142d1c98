package layerfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/tile"
)

// Writer implements tile.LayerWriter interface for layer files.
type Writer struct {
	filePattern string
}

// NewWriter creates a new Writer for the given file pattern (e.g. "/home/user/out/{layer}.bin").
func NewWriter(filePattern string) (*Writer, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	return &Writer{filePattern}, nil
}

func (w *Writer) WriteLayer(name string, width, height int, tiles []tile.LayerTile) error {
	if len(tiles) != width*height {
		return fmt.Errorf("libtmx: layer %q has %d tiles, want %d", name, len(tiles), width*height)
	}
	filePath, err := formatPattern(w.filePattern, name)
	if err != nil {
		return err
	}

	data, err := codec.Pack(tiles)
	if err != nil {
		return fmt.Errorf("layer %q: %w", name, err)
	}

	dirPath := filepath.Dir(filePath)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}

func (w *Writer) Finalize() error {
	return nil
}
