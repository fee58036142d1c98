package tmx

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/eak1mov/go-libtmx/tile"
)

// Tileset maps a contiguous range of global tile ids, starting at FirstGID,
// to local tile ids.
type Tileset struct {
	FirstGID tile.GID
	// Source is the path of an external TSX file as written in the map,
	// or empty for an embedded tileset.
	Source string

	Name       string
	TileWidth  int
	TileHeight int
	Spacing    int
	Margin     int
	TileCount  int
	Columns    int
	OffsetX    int
	OffsetY    int
	Grid       *TilesetGrid

	Properties Properties
	Image      *Image
	Terrains   []TerrainType
	// Tiles holds only the tiles carrying extra data, keyed by local id.
	Tiles map[int]*Tile
}

type TilesetGrid struct {
	Orientation string
	Width       int
	Height      int
}

// Tile is the definition of a single tile inside its tileset.
type Tile struct {
	ID          int
	Type        string
	Terrain     *Terrain
	Probability *float64
	Image       *Image
	Animation   []Frame
	Properties  Properties
}

type TerrainType struct {
	Name       string
	Tile       int // local id of the representative tile, -1 for none
	Properties Properties
}

// NoTerrain marks a tile corner without terrain.
const NoTerrain = -1

// Terrain holds indices into the tileset's terrain types for the
// top-left, top-right, bottom-left and bottom-right corners.
type Terrain [4]int

func ParseTerrain(s string) (Terrain, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Terrain{}, fmt.Errorf("%w: terrain %q must have 4 corners", ErrFormat, s)
	}
	var t Terrain
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			t[i] = NoTerrain
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return Terrain{}, fmt.Errorf("%w: terrain %q", ErrFormat, s)
		}
		t[i] = v
	}
	return t, nil
}

func (t Terrain) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		if v != NoTerrain {
			parts[i] = strconv.Itoa(v)
		}
	}
	return strings.Join(parts, ",")
}

// Frame is a single step of a tile animation.
type Frame struct {
	TileID   int // local id
	Duration int // milliseconds
}

func NewTileset(firstGID tile.GID, name string, tileWidth, tileHeight, tileCount int) *Tileset {
	return &Tileset{
		FirstGID:   firstGID,
		Name:       name,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		TileCount:  tileCount,
		Tiles:      make(map[int]*Tile),
	}
}

// Contains reports whether local is a valid local id of ts. Tilesets
// without a tile count (image collections) contain only defined tiles.
func (ts *Tileset) Contains(local int) bool {
	if local < 0 {
		return false
	}
	if ts.TileCount > 0 {
		return local < ts.TileCount
	}
	_, ok := ts.Tiles[local]
	return ok
}

// span is the number of global ids reserved by ts.
func (ts *Tileset) span() int {
	if ts.TileCount > 0 {
		return ts.TileCount
	}
	if len(ts.Tiles) == 0 {
		return 0
	}
	return slices.Max(slices.Collect(maps.Keys(ts.Tiles))) + 1
}

// Tile returns the definition of a local tile, creating it if needed.
func (ts *Tileset) Tile(local int) *Tile {
	if ts.Tiles == nil {
		ts.Tiles = make(map[int]*Tile)
	}
	t, ok := ts.Tiles[local]
	if !ok {
		t = &Tile{ID: local}
		ts.Tiles[local] = t
	}
	return t
}

// GID returns the global id of a local tile.
func (ts *Tileset) GID(local int) tile.GID {
	return ts.FirstGID + tile.GID(local)
}
