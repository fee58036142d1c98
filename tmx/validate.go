package tmx

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/eak1mov/go-libtmx/tile"
)

// Validate checks the structural invariants of m: tileset id ranges do not
// overlap, tile layers match the map dimensions and every nonzero cell and
// tile object resolves to a tileset. All violations are reported together.
func (m *Map) Validate() error {
	var errs []error
	errs = append(errs, validateTilesets(m.Tilesets)...)

	r := NewResolver(m.Tilesets)
	v := &validator{m: m, r: r}
	v.layers("", m.Layers)
	errs = append(errs, v.errs...)
	return errors.Join(errs...)
}

func validateTilesets(tilesets []*Tileset) []error {
	var errs []error
	sorted := NewResolver(tilesets).tilesets
	for i, ts := range sorted {
		path := joinPath("", "tileset", ts.Name)
		if ts.FirstGID == 0 {
			errs = append(errs, pathError(path, fmt.Errorf("%w: firstgid must be positive", ErrFormat)))
		}
		if i > 0 {
			prev := sorted[i-1]
			if int(prev.FirstGID)+prev.span() > int(ts.FirstGID) {
				errs = append(errs, pathError(path, fmt.Errorf("%w: gid range overlaps tileset %q", ErrFormat, prev.Name)))
			}
		}
		errs = append(errs, validateTileset(path, ts)...)
	}
	return errs
}

func validateTileset(path string, ts *Tileset) []error {
	var errs []error
	for _, tt := range ts.Terrains {
		if tt.Tile != NoTerrain && !ts.Contains(tt.Tile) {
			errs = append(errs, pathError(joinPath(path, "terrain", tt.Name),
				fmt.Errorf("%w: tile %d not in tileset", ErrReference, tt.Tile)))
		}
	}

	ids := slices.Sorted(maps.Keys(ts.Tiles))
	for _, id := range ids {
		t := ts.Tiles[id]
		tilePath := path + "/tile " + strconv.Itoa(id)
		if t.ID != id {
			errs = append(errs, pathError(tilePath, fmt.Errorf("%w: tile id %d stored under %d", ErrFormat, t.ID, id)))
		}
		if ts.TileCount > 0 && !ts.Contains(id) {
			errs = append(errs, pathError(tilePath, fmt.Errorf("%w: local id beyond tile count %d", ErrReference, ts.TileCount)))
		}
		if t.Terrain != nil {
			for _, corner := range t.Terrain {
				if corner != NoTerrain && corner >= len(ts.Terrains) {
					errs = append(errs, pathError(tilePath, fmt.Errorf("%w: terrain index %d", ErrReference, corner)))
				}
			}
		}
		for _, f := range t.Animation {
			if !ts.Contains(f.TileID) {
				errs = append(errs, pathError(tilePath, fmt.Errorf("%w: animation frame tile %d", ErrReference, f.TileID)))
			}
		}
	}
	return errs
}

type validator struct {
	m *Map
	r *Resolver
	// refsOnly limits the checks to tile references.
	refsOnly bool
	errs     []error
}

func (v *validator) layers(parent string, layers []Layer) {
	for _, l := range layers {
		switch {
		case l.Tile != nil:
			v.tileLayer(joinPath(parent, "layer", l.Tile.Name), l.Tile)
		case l.Objects != nil:
			v.objectGroup(joinPath(parent, "objectgroup", l.Objects.Name), l.Objects)
		case l.Group != nil:
			v.layers(joinPath(parent, "group", l.Group.Name), l.Group.Layers)
		case l.Image != nil:
		case v.refsOnly:
		default:
			v.errs = append(v.errs, pathError(parent, fmt.Errorf("%w: empty layer entry", ErrFormat)))
		}
	}
}

func (v *validator) tileLayer(path string, l *TileLayer) {
	if v.refsOnly {
		v.references(path, l.Tiles)
		return
	}
	if l.Width != v.m.Width || l.Height != v.m.Height {
		v.errs = append(v.errs, pathError(path, fmt.Errorf("%w: layer size %dx%d differs from map size %dx%d",
			ErrFormat, l.Width, l.Height, v.m.Width, v.m.Height)))
	}
	count, err := cellCount(l.Width, l.Height)
	if err != nil {
		v.errs = append(v.errs, pathError(path, err))
		return
	}
	if len(l.Tiles) != count {
		v.errs = append(v.errs, pathError(path, fmt.Errorf("%w: tile count does not match layer dimensions (got %d, want %d)",
			ErrFormat, len(l.Tiles), count)))
		return
	}
	v.references(path, l.Tiles)
}

func (v *validator) references(path string, tiles []tile.LayerTile) {
	for i, t := range tiles {
		if t.Empty() {
			continue
		}
		if _, _, err := v.r.Lookup(t.GID); err != nil {
			v.errs = append(v.errs, &Error{Path: path, Index: i, GID: t.GID, Err: err})
		}
	}
}

func (v *validator) objectGroup(path string, g *ObjectGroup) {
	for _, o := range g.Objects {
		if o.Tile == nil || o.Tile.Empty() {
			continue
		}
		if _, _, err := v.r.Lookup(o.Tile.GID); err != nil {
			v.errs = append(v.errs, &Error{Path: fmt.Sprintf("%s/object %d", path, o.ID), Index: -1, GID: o.Tile.GID, Err: err})
		}
	}
}
