package tmx

import (
	"errors"
	"fmt"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/tile"
)

var ErrReference = errors.New("libtmx: unresolved reference")

// Error kinds reported by the codec, re-exported for callers of Load and Save.
var (
	ErrFormat      = codec.ErrFormat
	ErrCorruptData = codec.ErrCorruptData
	ErrConfig      = codec.ErrConfig
	ErrRange       = tile.ErrRange
)

// Error locates a failure inside a map document.
type Error struct {
	Path  string   // element path, e.g. `group "a"/layer "ground"`
	Index int      // cell index inside a tile layer, or -1
	GID   tile.GID // global tile id involved, or 0
	Err   error
}

func (e *Error) Error() string {
	msg := e.Path
	if e.Index >= 0 {
		msg += fmt.Sprintf(" cell %d", e.Index)
	}
	if e.GID != 0 {
		msg += fmt.Sprintf(" gid %d", e.GID)
	}
	if msg == "" {
		return e.Err.Error()
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func pathError(path string, err error) error {
	return &Error{Path: path, Index: -1, Err: err}
}

func joinPath(parent, kind, name string) string {
	p := fmt.Sprintf("%s %q", kind, name)
	if parent == "" {
		return p
	}
	return parent + "/" + p
}
