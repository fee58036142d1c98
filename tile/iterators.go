package tile

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// IterTiles returns an iterator over all cells of the visitor.
// It yields cell indices and tiles. Iteration panics on visitor errors.
func IterTiles(v Visitor) iter.Seq2[int, LayerTile] {
	return func(yield func(int, LayerTile) bool) {
		err := v.VisitTiles(func(index int, t LayerTile) error {
			if !yield(index, t) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

// Grid adapts a plain slice to the Visitor interface.
type Grid []LayerTile

func (g Grid) VisitTiles(visitor func(int, LayerTile) error) error {
	for i, t := range g {
		if err := visitor(i, t); err != nil {
			return err
		}
	}
	return nil
}
