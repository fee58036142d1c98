package layerfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/tile"
)

// Reader implements tile.LayerReader interface for layer files.
type Reader struct {
	filePattern string
	rootDir     string
	pathRegexp  *regexp.Regexp
}

// NewReader creates a new Reader for the given file pattern (e.g. "/home/user/out/{layer}.bin").
func NewReader(filePattern string) (*Reader, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}

	prefix, suffix, _ := strings.Cut(filepath.Clean(filePattern), placeholder)
	pathRegex, err := regexp.Compile("^" + regexp.QuoteMeta(prefix) + `(?P<layer>[^/\\]+)` + regexp.QuoteMeta(suffix) + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	rootDir := filepath.Dir(prefix + "x")

	return &Reader{filePattern, rootDir, pathRegex}, nil
}

// ReadLayer returns an empty slice if the layer file does not exist.
func (r *Reader) ReadLayer(name string) ([]tile.LayerTile, error) {
	filePath, err := formatPattern(r.filePattern, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return make([]tile.LayerTile, 0), nil
	}
	if err != nil {
		return nil, err
	}
	return codec.Unpack(data)
}

// VisitLayers calls the visitor for every layer file matching the pattern.
func (r *Reader) VisitLayers(visitor func(string, []tile.LayerTile) error) error {
	return filepath.WalkDir(r.rootDir, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		matches := r.pathRegexp.FindStringSubmatch(filePath)
		if matches == nil {
			return nil
		}
		name := matches[r.pathRegexp.SubexpIndex("layer")]

		data, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}
		tiles, err := codec.Unpack(data)
		if err != nil {
			return fmt.Errorf("layer %q: %w", name, err)
		}

		return visitor(name, tiles)
	})
}
