package tmx

import (
	"cmp"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/internal/markup"
	"github.com/eak1mov/go-libtmx/tile"
)

// Save writes m as a TMX document. It does not validate m; every tile
// layer is encoded with its own format unless WithFormat is given.
// External tilesets are written as references only. With
// WithStrictReferences, a map that has tilesets must resolve every tile.
func Save(w io.Writer, m *Map, opts ...Option) error {
	c := newConfig(opts)

	if c.Strict && len(m.Tilesets) > 0 {
		v := &validator{m: m, r: NewResolver(m.Tilesets), refsOnly: true}
		v.layers("", m.Layers)
		if len(v.errs) > 0 {
			return errors.Join(v.errs...)
		}
	}

	e := &emitter{logger: c.Logger, format: c.Format}
	root := e.emitMap(m)
	if len(e.errs) > 0 {
		return errors.Join(e.errs...)
	}
	if err := markup.Encode(w, root); err != nil {
		return err
	}

	c.Logger.Debug("libtmx: map saved", "layers", len(m.Layers))
	return nil
}

func SaveFile(path string, m *Map, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return Save(f, m, opts...)
}

// SaveTileset writes ts as a standalone TSX document.
func SaveTileset(w io.Writer, ts *Tileset, opts ...Option) error {
	c := newConfig(opts)

	e := &emitter{logger: c.Logger}
	root := markup.New("tileset")
	e.emitTilesetBody(root, ts)
	if len(e.errs) > 0 {
		return errors.Join(e.errs...)
	}
	return markup.Encode(w, root)
}

type emitter struct {
	logger *slog.Logger
	format *codec.Format
	errs   []error
}

func setInt(e *markup.Element, name string, v int) {
	e.SetAttr(name, strconv.Itoa(v))
}

func setFloat(e *markup.Element, name string, v float64) {
	e.SetAttr(name, formatFloat(v))
}

func setNonZero(e *markup.Element, name string, v int) {
	if v != 0 {
		setInt(e, name, v)
	}
}

func setNonEmpty(e *markup.Element, name, v string) {
	if v != "" {
		e.SetAttr(name, v)
	}
}

func setBool(e *markup.Element, name string, v bool) {
	if v {
		e.SetAttr(name, "1")
	} else {
		e.SetAttr(name, "0")
	}
}

func setGID(e *markup.Element, name string, t tile.LayerTile) error {
	value, err := tile.Encode(t)
	if err != nil {
		return err
	}
	e.SetAttr(name, strconv.FormatUint(uint64(value), 10))
	return nil
}

func (e *emitter) emitMap(m *Map) *markup.Element {
	root := markup.New("map")
	root.SetAttr("version", cmp.Or(m.Version, "1.10"))
	setNonEmpty(root, "tiledversion", m.TiledVersion)
	root.SetAttr("orientation", string(cmp.Or(m.Orientation, Orthogonal)))
	setNonEmpty(root, "renderorder", m.RenderOrder)
	if m.CompressionLevel != nil {
		setInt(root, "compressionlevel", *m.CompressionLevel)
	}
	setInt(root, "width", m.Width)
	setInt(root, "height", m.Height)
	setInt(root, "tilewidth", m.TileWidth)
	setInt(root, "tileheight", m.TileHeight)
	setNonZero(root, "hexsidelength", m.HexSideLength)
	setNonEmpty(root, "staggeraxis", m.StaggerAxis)
	setNonEmpty(root, "staggerindex", m.StaggerIndex)
	if m.BackgroundColor != nil {
		root.SetAttr("backgroundcolor", m.BackgroundColor.String())
	}
	root.SetAttr("infinite", "0")
	setNonZero(root, "nextlayerid", m.NextLayerID)
	setNonZero(root, "nextobjectid", m.NextObjectID)

	if s := m.EditorSettings; s != nil {
		settings := markup.New("editorsettings")
		if s.ChunkWidth != 0 || s.ChunkHeight != 0 {
			chunk := markup.New("chunksize")
			setInt(chunk, "width", s.ChunkWidth)
			setInt(chunk, "height", s.ChunkHeight)
			settings.Append(chunk)
		}
		if s.ExportTarget != "" || s.ExportFormat != "" {
			export := markup.New("export")
			setNonEmpty(export, "target", s.ExportTarget)
			setNonEmpty(export, "format", s.ExportFormat)
			settings.Append(export)
		}
		root.Append(settings)
	}

	e.emitProperties(root, m.Properties)
	for _, ts := range m.Tilesets {
		root.Append(e.emitTileset(ts))
	}
	for _, l := range m.Layers {
		if c := e.emitLayer(l, ""); c != nil {
			root.Append(c)
		}
	}
	return root
}

func (e *emitter) emitTileset(ts *Tileset) *markup.Element {
	el := markup.New("tileset")
	setInt(el, "firstgid", int(ts.FirstGID))
	if ts.Source != "" {
		el.SetAttr("source", ts.Source)
		return el
	}
	e.emitTilesetBody(el, ts)
	return el
}

func (e *emitter) emitTilesetBody(el *markup.Element, ts *Tileset) {
	el.SetAttr("name", ts.Name)
	setInt(el, "tilewidth", ts.TileWidth)
	setInt(el, "tileheight", ts.TileHeight)
	setNonZero(el, "spacing", ts.Spacing)
	setNonZero(el, "margin", ts.Margin)
	setInt(el, "tilecount", ts.TileCount)
	setInt(el, "columns", ts.Columns)

	if ts.OffsetX != 0 || ts.OffsetY != 0 {
		offset := markup.New("tileoffset")
		setInt(offset, "x", ts.OffsetX)
		setInt(offset, "y", ts.OffsetY)
		el.Append(offset)
	}
	if g := ts.Grid; g != nil {
		grid := markup.New("grid").SetAttr("orientation", g.Orientation)
		setInt(grid, "width", g.Width)
		setInt(grid, "height", g.Height)
		el.Append(grid)
	}
	e.emitProperties(el, ts.Properties)
	if ts.Image != nil {
		el.Append(e.emitImage(ts.Image))
	}
	if len(ts.Terrains) > 0 {
		terrains := markup.New("terraintypes")
		for _, tt := range ts.Terrains {
			terrain := markup.New("terrain").SetAttr("name", tt.Name)
			setInt(terrain, "tile", tt.Tile)
			e.emitProperties(terrain, tt.Properties)
			terrains.Append(terrain)
		}
		el.Append(terrains)
	}
	for _, id := range slices.Sorted(maps.Keys(ts.Tiles)) {
		el.Append(e.emitTile(id, ts.Tiles[id]))
	}
}

func (e *emitter) emitTile(id int, t *Tile) *markup.Element {
	el := markup.New("tile")
	setInt(el, "id", id)
	setNonEmpty(el, "type", t.Type)
	if t.Terrain != nil {
		el.SetAttr("terrain", t.Terrain.String())
	}
	if t.Probability != nil {
		setFloat(el, "probability", *t.Probability)
	}
	e.emitProperties(el, t.Properties)
	if t.Image != nil {
		el.Append(e.emitImage(t.Image))
	}
	if len(t.Animation) > 0 {
		animation := markup.New("animation")
		for _, f := range t.Animation {
			frame := markup.New("frame")
			setInt(frame, "tileid", f.TileID)
			setInt(frame, "duration", f.Duration)
			animation.Append(frame)
		}
		el.Append(animation)
	}
	return el
}

func (e *emitter) emitImage(img *Image) *markup.Element {
	el := markup.New("image")
	setNonEmpty(el, "format", img.Format)
	setNonEmpty(el, "source", img.Source)
	if img.Trans != nil {
		el.SetAttr("trans", strings.TrimPrefix(img.Trans.String(), "#"))
	}
	setNonZero(el, "width", img.Width)
	setNonZero(el, "height", img.Height)
	if img.Data != nil {
		data := markup.New("data").SetAttr("encoding", "base64")
		data.Text = base64.StdEncoding.EncodeToString(img.Data)
		el.Append(data)
	}
	return el
}

func (e *emitter) emitProperties(parent *markup.Element, props Properties) {
	if props == nil {
		return
	}
	el := markup.New("properties")
	for _, p := range props {
		prop := markup.New("property").SetAttr("name", p.Name)
		if p.Value == nil {
			prop.SetAttr("value", "")
			el.Append(prop)
			continue
		}
		if typ := p.Value.Type(); typ != TypeString {
			prop.SetAttr("type", string(typ))
		}
		if class, ok := p.Value.(ClassValue); ok {
			prop.SetAttr("propertytype", class.Name)
			e.emitProperties(prop, class.Members)
			el.Append(prop)
			continue
		}
		if text := p.Value.String(); strings.Contains(text, "\n") {
			prop.Text = text
		} else {
			prop.SetAttr("value", text)
		}
		el.Append(prop)
	}
	parent.Append(el)
}

func (e *emitter) emitLayerInfo(el *markup.Element, info *LayerInfo) {
	setNonZero(el, "id", info.ID)
	el.SetAttr("name", info.Name)
	if info.Opacity != 1 {
		setFloat(el, "opacity", info.Opacity)
	}
	if !info.Visible {
		setBool(el, "visible", false)
	}
	if info.OffsetX != 0 {
		setFloat(el, "offsetx", info.OffsetX)
	}
	if info.OffsetY != 0 {
		setFloat(el, "offsety", info.OffsetY)
	}
	e.emitProperties(el, info.Properties)
}

func (e *emitter) emitLayer(l Layer, parent string) *markup.Element {
	switch {
	case l.Tile != nil:
		return e.emitTileLayer(l.Tile, joinPath(parent, "layer", l.Tile.Name))
	case l.Image != nil:
		el := markup.New("imagelayer")
		e.emitLayerInfo(el, &l.Image.LayerInfo)
		if l.Image.Image != nil {
			el.Append(e.emitImage(l.Image.Image))
		}
		return el
	case l.Objects != nil:
		return e.emitObjectGroup(l.Objects, joinPath(parent, "objectgroup", l.Objects.Name))
	case l.Group != nil:
		el := markup.New("group")
		e.emitLayerInfo(el, &l.Group.LayerInfo)
		path := joinPath(parent, "group", l.Group.Name)
		for _, child := range l.Group.Layers {
			if c := e.emitLayer(child, path); c != nil {
				el.Append(c)
			}
		}
		return el
	}
	e.errs = append(e.errs, pathError(parent, fmt.Errorf("%w: empty layer entry", ErrFormat)))
	return nil
}

func (e *emitter) emitTileLayer(l *TileLayer, path string) *markup.Element {
	el := markup.New("layer")
	e.emitLayerInfo(el, &l.LayerInfo)
	setInt(el, "width", l.Width)
	setInt(el, "height", l.Height)

	format := l.Format
	if e.format != nil {
		format = *e.format
	}

	data := markup.New("data")
	el.Append(data)
	if format.Encoding == codec.EncodingXML {
		for i, t := range l.Tiles {
			c := markup.New("tile")
			if !t.Empty() || t.HFlip || t.VFlip || t.DFlip {
				if err := setGID(c, "gid", t); err != nil {
					e.errs = append(e.errs, &Error{Path: path, Index: i, GID: t.GID, Err: err})
					return el
				}
			}
			data.Append(c)
		}
		return el
	}

	encoding, compression := format.Attrs()
	data.SetAttr("encoding", encoding)
	setNonEmpty(data, "compression", compression)
	text, err := codec.Encode(l.Tiles, format)
	if err != nil {
		e.errs = append(e.errs, pathError(path, err))
		return el
	}
	data.Text = text
	e.logger.Debug("libtmx: encoded layer", "layer", path, "format", format.String(), "tiles", len(l.Tiles))
	return el
}

func (e *emitter) emitObjectGroup(g *ObjectGroup, path string) *markup.Element {
	el := markup.New("objectgroup")
	if g.Color != nil {
		el.SetAttr("color", g.Color.String())
	}
	setNonEmpty(el, "draworder", g.DrawOrder)
	e.emitLayerInfo(el, &g.LayerInfo)
	for _, o := range g.Objects {
		el.Append(e.emitObject(o, fmt.Sprintf("%s/object %d", path, o.ID)))
	}
	return el
}

func (e *emitter) emitObject(o *Object, path string) *markup.Element {
	el := markup.New("object")
	setInt(el, "id", o.ID)
	setNonEmpty(el, "name", o.Name)
	setNonEmpty(el, "type", o.Type)
	if o.Tile != nil {
		if err := setGID(el, "gid", *o.Tile); err != nil {
			e.errs = append(e.errs, &Error{Path: path, Index: -1, GID: o.Tile.GID, Err: err})
		}
	}
	setFloat(el, "x", o.X)
	setFloat(el, "y", o.Y)
	if o.Width != 0 {
		setFloat(el, "width", o.Width)
	}
	if o.Height != 0 {
		setFloat(el, "height", o.Height)
	}
	if o.Rotation != 0 {
		setFloat(el, "rotation", o.Rotation)
	}
	if !o.Visible {
		setBool(el, "visible", false)
	}
	e.emitProperties(el, o.Properties)

	switch o.Shape {
	case ShapeEllipse:
		el.Append(markup.New("ellipse"))
	case ShapePoint:
		el.Append(markup.New("point"))
	case ShapePolygon:
		el.Append(markup.New("polygon").SetAttr("points", formatPoints(o.Points)))
	case ShapePolyline:
		el.Append(markup.New("polyline").SetAttr("points", formatPoints(o.Points)))
	case ShapeText:
		if o.Text != nil {
			el.Append(emitText(o.Text))
		}
	}
	return el
}

func emitText(t *Text) *markup.Element {
	el := markup.New("text")
	el.SetAttr("fontfamily", t.FontFamily)
	setInt(el, "pixelsize", t.PixelSize)
	setBool(el, "wrap", t.Wrap)
	el.SetAttr("color", t.Color.String())
	setBool(el, "bold", t.Bold)
	setBool(el, "italic", t.Italic)
	setBool(el, "underline", t.Underline)
	setBool(el, "strikeout", t.Strikeout)
	setBool(el, "kerning", t.Kerning)
	el.SetAttr("halign", t.HAlign)
	el.SetAttr("valign", t.VAlign)
	el.Text = t.Text
	return el
}
