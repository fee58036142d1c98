// Package tmx represents, loads and saves tile maps in the TMX format
// used by the Tiled map editor.
//
// A Map owns its tilesets and layers. Tile layers hold dense grids of
// tile.LayerTile cells which are encoded with the codec package on Save
// and decoded on Load. Load validates every reference before returning;
// Save trusts the caller and serializes what is present.
package tmx

import (
	"iter"
)

type Orientation string

const (
	Orthogonal Orientation = "orthogonal"
	Isometric  Orientation = "isometric"
	Staggered  Orientation = "staggered"
	Hexagonal  Orientation = "hexagonal"
)

type Map struct {
	Version      string
	TiledVersion string
	Orientation  Orientation
	RenderOrder  string

	// CompressionLevel is kept for round trips only; nil means unspecified.
	CompressionLevel *int

	Width      int // in tiles
	Height     int // in tiles
	TileWidth  int // in pixels
	TileHeight int // in pixels

	// Staggered and hexagonal maps only.
	HexSideLength int
	StaggerAxis   string
	StaggerIndex  string

	BackgroundColor *Color
	NextLayerID     int
	NextObjectID    int

	EditorSettings *EditorSettings
	Properties     Properties
	Tilesets       []*Tileset
	Layers         []Layer
}

type EditorSettings struct {
	ChunkWidth   int
	ChunkHeight  int
	ExportTarget string
	ExportFormat string
}

// New returns an empty orthogonal map.
func New(width, height, tileWidth, tileHeight int) *Map {
	return &Map{
		Version:     "1.10",
		Orientation: Orthogonal,
		RenderOrder: "right-down",
		Width:       width,
		Height:      height,
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
	}
}

// AllLayers iterates over the layers of m in document order, descending
// into group layers after yielding the group itself.
func (m *Map) AllLayers() iter.Seq[Layer] {
	return func(yield func(Layer) bool) {
		walkLayers(m.Layers, yield)
	}
}

// TileLayers iterates over every tile layer of m, including nested ones.
func (m *Map) TileLayers() iter.Seq[*TileLayer] {
	return func(yield func(*TileLayer) bool) {
		for l := range m.AllLayers() {
			if l.Tile != nil && !yield(l.Tile) {
				return
			}
		}
	}
}

// TileLayer returns the first tile layer with the given name.
func (m *Map) TileLayer(name string) (*TileLayer, bool) {
	for l := range m.TileLayers() {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

func walkLayers(layers []Layer, yield func(Layer) bool) bool {
	for _, l := range layers {
		if !yield(l) {
			return false
		}
		if l.Group != nil && !walkLayers(l.Group.Layers, yield) {
			return false
		}
	}
	return true
}
