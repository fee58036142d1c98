package tmx

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"github.com/eak1mov/go-libtmx/tile"
)

// Resolver finds the owning tileset of global tile ids. It is a snapshot of
// the map's tileset list; build a new one after changing that list.
type Resolver struct {
	tilesets []*Tileset // sorted by FirstGID
}

func NewResolver(tilesets []*Tileset) *Resolver {
	sorted := slices.Clone(tilesets)
	slices.SortStableFunc(sorted, func(a, b *Tileset) int {
		return cmp.Compare(a.FirstGID, b.FirstGID)
	})
	return &Resolver{tilesets: sorted}
}

// Lookup returns the tileset owning gid and the local id inside it. The
// owner is the tileset with the largest first gid not exceeding gid.
func (r *Resolver) Lookup(gid tile.GID) (*Tileset, int, error) {
	if gid == 0 {
		return nil, 0, fmt.Errorf("%w: gid 0 is an empty cell", ErrReference)
	}
	i := sort.Search(len(r.tilesets), func(i int) bool {
		return r.tilesets[i].FirstGID > gid
	})
	if i == 0 {
		return nil, 0, fmt.Errorf("%w: no tileset for gid %d", ErrReference, gid)
	}
	ts := r.tilesets[i-1]
	local := int(gid - ts.FirstGID)
	if !ts.Contains(local) {
		return nil, 0, fmt.Errorf("%w: gid %d is outside tileset %q (local id %d)", ErrReference, gid, ts.Name, local)
	}
	return ts, local, nil
}

// Lookup resolves gid against the tilesets of m.
func (m *Map) Lookup(gid tile.GID) (*Tileset, int, error) {
	return NewResolver(m.Tilesets).Lookup(gid)
}
