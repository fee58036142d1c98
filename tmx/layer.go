package tmx

import (
	"fmt"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/tile"
)

type LayerKind uint8

const (
	KindTile LayerKind = iota + 1
	KindImage
	KindObjects
	KindGroup
)

func (k LayerKind) String() string {
	switch k {
	case KindTile:
		return "layer"
	case KindImage:
		return "imagelayer"
	case KindObjects:
		return "objectgroup"
	case KindGroup:
		return "group"
	}
	return fmt.Sprintf("LayerKind(%d)", uint8(k))
}

// Layer is one entry of a map's layer list. Exactly one field is set.
type Layer struct {
	Tile    *TileLayer
	Image   *ImageLayer
	Objects *ObjectGroup
	Group   *GroupLayer
}

func (l Layer) Kind() LayerKind {
	switch {
	case l.Tile != nil:
		return KindTile
	case l.Image != nil:
		return KindImage
	case l.Objects != nil:
		return KindObjects
	case l.Group != nil:
		return KindGroup
	}
	return 0
}

// Info returns the attributes common to all layer kinds, or nil for an
// empty Layer.
func (l Layer) Info() *LayerInfo {
	switch {
	case l.Tile != nil:
		return &l.Tile.LayerInfo
	case l.Image != nil:
		return &l.Image.LayerInfo
	case l.Objects != nil:
		return &l.Objects.LayerInfo
	case l.Group != nil:
		return &l.Group.LayerInfo
	}
	return nil
}

type LayerInfo struct {
	ID         int
	Name       string
	Opacity    float64 // 0 to 1
	Visible    bool
	OffsetX    float64
	OffsetY    float64
	Properties Properties
}

func newLayerInfo(name string) LayerInfo {
	return LayerInfo{Name: name, Opacity: 1, Visible: true}
}

// TileLayer is a dense row-major grid of Width*Height cells.
type TileLayer struct {
	LayerInfo
	Width  int
	Height int
	Tiles  []tile.LayerTile
	// Format is the data encoding used on Save; Load keeps the one read.
	Format codec.Format
}

func NewTileLayer(name string, width, height int) *TileLayer {
	return &TileLayer{
		LayerInfo: newLayerInfo(name),
		Width:     width,
		Height:    height,
		Tiles:     make([]tile.LayerTile, width*height),
		Format:    codec.FormatBase64Zlib,
	}
}

func (l *TileLayer) Layer() Layer { return Layer{Tile: l} }

// cellCount returns width*height, or ErrFormat when the grid is negative
// or larger than a payload can describe.
func cellCount(width, height int) (int, error) {
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("%w: negative layer size %dx%d", ErrFormat, width, height)
	}
	if height != 0 && width > codec.MaxTiles/height {
		return 0, fmt.Errorf("%w: layer size %dx%d exceeds %d tiles", ErrFormat, width, height, codec.MaxTiles)
	}
	return width * height, nil
}

func (l *TileLayer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.Width && y < l.Height
}

// At returns the cell at column x and row y.
func (l *TileLayer) At(x, y int) (tile.LayerTile, bool) {
	if !l.inside(x, y) {
		return tile.LayerTile{}, false
	}
	return l.Tiles[y*l.Width+x], true
}

func (l *TileLayer) Set(x, y int, t tile.LayerTile) bool {
	if !l.inside(x, y) {
		return false
	}
	l.Tiles[y*l.Width+x] = t
	return true
}

// VisitTiles implements tile.Visitor.
func (l *TileLayer) VisitTiles(visitor func(int, tile.LayerTile) error) error {
	return tile.Grid(l.Tiles).VisitTiles(visitor)
}

type ImageLayer struct {
	LayerInfo
	Image *Image
}

func NewImageLayer(name string, image *Image) *ImageLayer {
	return &ImageLayer{LayerInfo: newLayerInfo(name), Image: image}
}

func (l *ImageLayer) Layer() Layer { return Layer{Image: l} }

type ObjectGroup struct {
	LayerInfo
	Color     *Color
	DrawOrder string // "topdown" or "index", empty when unspecified
	Objects   []*Object
}

func NewObjectGroup(name string) *ObjectGroup {
	return &ObjectGroup{LayerInfo: newLayerInfo(name)}
}

func (g *ObjectGroup) Layer() Layer { return Layer{Objects: g} }

type GroupLayer struct {
	LayerInfo
	Layers []Layer
}

func NewGroupLayer(name string, layers ...Layer) *GroupLayer {
	return &GroupLayer{LayerInfo: newLayerInfo(name), Layers: layers}
}

func (g *GroupLayer) Layer() Layer { return Layer{Group: g} }
