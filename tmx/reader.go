package tmx

import (
	"bytes"
	"cmp"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eak1mov/go-libtmx/codec"
	"github.com/eak1mov/go-libtmx/internal/markup"
	"github.com/eak1mov/go-libtmx/tile"
)

// Load reads a TMX document. The returned map is fully validated: on any
// failure Load returns a nil map and every problem found, joined.
func Load(r io.Reader, opts ...Option) (*Map, error) {
	c := newConfig(opts)

	root, err := markup.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if root.Name() != "map" {
		return nil, fmt.Errorf("%w: root element is %q, want map", ErrFormat, root.Name())
	}

	b := &builder{logger: c.Logger, fileAccess: c.FileAccess}
	m := b.buildMap(root)
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	c.Logger.Debug("libtmx: map loaded",
		"width", m.Width, "height", m.Height,
		"tilesets", len(m.Tilesets), "layers", len(m.Layers))
	return m, nil
}

// LoadFile reads a TMX file. Unless WithFileAccess is given, external
// tilesets are read from paths relative to the map file.
func LoadFile(path string, opts ...Option) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts = append([]Option{WithFileAccess(dirAccess(filepath.Dir(path)))}, opts...)
	return Load(f, opts...)
}

// LoadTileset reads a standalone TSX document. The tileset has no first
// gid; the map that references it assigns one.
func LoadTileset(r io.Reader, opts ...Option) (*Tileset, error) {
	c := newConfig(opts)

	root, err := markup.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	b := &builder{logger: c.Logger, fileAccess: c.FileAccess}
	ts := b.buildTilesetDocument(root, "")
	errs := b.errs
	if ts != nil {
		errs = append(errs, validateTileset(joinPath("", "tileset", ts.Name), ts)...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ts, nil
}

func dirAccess(dir string) FileAccessFunc {
	return func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, filepath.FromSlash(path))
		}
		return os.ReadFile(path)
	}
}

// builder turns a markup tree into model values, collecting errors instead
// of stopping at the first one.
type builder struct {
	logger     *slog.Logger
	fileAccess FileAccessFunc
	errs       []error
}

func (b *builder) fail(path string, err error) {
	b.errs = append(b.errs, pathError(path, err))
}

func (b *builder) attrs(e *markup.Element, path string) attrs {
	return attrs{e: e, path: path, b: b}
}

type attrs struct {
	e    *markup.Element
	path string
	b    *builder
}

func (a attrs) invalid(name, value, kind string) {
	a.b.fail(a.path, fmt.Errorf("%w: attribute %s=%q is not %s", ErrFormat, name, value, kind))
}

func (a attrs) str(name, def string) string {
	if v, ok := a.e.Attr(name); ok {
		return v
	}
	return def
}

func (a attrs) int(name string, def int) int {
	v, ok := a.e.Attr(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		a.invalid(name, v, "an integer")
		return def
	}
	return n
}

func (a attrs) float(name string, def float64) float64 {
	v, ok := a.e.Attr(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		a.invalid(name, v, "a number")
		return def
	}
	return f
}

func (a attrs) bool(name string, def bool) bool {
	v, ok := a.e.Attr(name)
	if !ok {
		return def
	}
	switch strings.TrimSpace(v) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	a.invalid(name, v, "a boolean")
	return def
}

func (a attrs) color(name string) *Color {
	v, ok := a.e.Attr(name)
	if !ok || v == "" {
		return nil
	}
	c, err := ParseColor(v)
	if err != nil {
		a.invalid(name, v, "a color")
		return nil
	}
	return &c
}

// gid reads a wire tile value; flips are kept.
func (a attrs) gid(name string) *tile.LayerTile {
	v, ok := a.e.Attr(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		a.invalid(name, v, "a tile id")
		return nil
	}
	t := tile.Decode(uint32(n))
	return &t
}

func (b *builder) buildMap(e *markup.Element) *Map {
	a := b.attrs(e, "map")
	m := &Map{
		Version:       a.str("version", ""),
		TiledVersion:  a.str("tiledversion", ""),
		Orientation:   Orientation(a.str("orientation", string(Orthogonal))),
		RenderOrder:   a.str("renderorder", ""),
		Width:         a.int("width", 0),
		Height:        a.int("height", 0),
		TileWidth:     a.int("tilewidth", 0),
		TileHeight:    a.int("tileheight", 0),
		HexSideLength: a.int("hexsidelength", 0),
		StaggerAxis:   a.str("staggeraxis", ""),
		StaggerIndex:  a.str("staggerindex", ""),
		NextLayerID:   a.int("nextlayerid", 0),
		NextObjectID:  a.int("nextobjectid", 0),
	}
	m.BackgroundColor = a.color("backgroundcolor")
	if _, ok := e.Attr("compressionlevel"); ok {
		level := a.int("compressionlevel", -1)
		m.CompressionLevel = &level
	}
	if a.bool("infinite", false) {
		b.fail("map", fmt.Errorf("%w: infinite maps are not supported", ErrConfig))
		return m
	}
	if m.Width < 0 || m.Height < 0 {
		b.fail("map", fmt.Errorf("%w: negative map size %dx%d", ErrFormat, m.Width, m.Height))
		return m
	}

	// Tilesets first, so that gid ranges are known when layers are built.
	for _, c := range e.Children {
		if c.Name() == "tileset" {
			if ts := b.buildTileset(c); ts != nil {
				m.Tilesets = append(m.Tilesets, ts)
			}
		}
	}

	for _, c := range e.Children {
		switch c.Name() {
		case "tileset":
		case "properties":
			m.Properties = b.buildProperties(c, "map")
		case "editorsettings":
			m.EditorSettings = b.buildEditorSettings(c)
		default:
			if l, ok := b.buildLayer(c, "", m); ok {
				m.Layers = append(m.Layers, l)
			}
		}
	}
	return m
}

func (b *builder) buildEditorSettings(e *markup.Element) *EditorSettings {
	s := &EditorSettings{}
	if c := e.Child("chunksize"); c != nil {
		a := b.attrs(c, "editorsettings")
		s.ChunkWidth = a.int("width", 0)
		s.ChunkHeight = a.int("height", 0)
	}
	if c := e.Child("export"); c != nil {
		a := b.attrs(c, "editorsettings")
		s.ExportTarget = a.str("target", "")
		s.ExportFormat = a.str("format", "")
	}
	return s
}

func (b *builder) buildTileset(e *markup.Element) *Tileset {
	a := b.attrs(e, "tileset")
	firstGID := a.int("firstgid", 0)
	if firstGID <= 0 || firstGID > int(tile.MaxGID) {
		b.fail(joinPath("", "tileset", a.str("name", a.str("source", ""))),
			fmt.Errorf("%w: firstgid %d out of range", ErrFormat, firstGID))
		return nil
	}

	source, external := e.Attr("source")
	if !external {
		ts := b.buildTilesetBody(e, "")
		ts.FirstGID = tile.GID(firstGID)
		return ts
	}

	path := joinPath("", "tileset", source)
	if b.fileAccess == nil {
		b.fail(path, fmt.Errorf("%w: external tileset without file access", ErrConfig))
		return nil
	}
	data, err := b.fileAccess(source)
	if err != nil {
		b.fail(path, err)
		return nil
	}
	root, err := markup.Decode(bytes.NewReader(data))
	if err != nil {
		b.fail(path, fmt.Errorf("%w: %w", ErrFormat, err))
		return nil
	}
	b.logger.Debug("libtmx: loaded external tileset", "source", source)

	ts := b.buildTilesetDocument(root, source)
	if ts == nil {
		return nil
	}
	ts.FirstGID = tile.GID(firstGID)
	ts.Source = source
	return ts
}

func (b *builder) buildTilesetDocument(root *markup.Element, source string) *Tileset {
	if root.Name() != "tileset" {
		b.fail(joinPath("", "tileset", source),
			fmt.Errorf("%w: root element is %q, want tileset", ErrFormat, root.Name()))
		return nil
	}
	return b.buildTilesetBody(root, source)
}

func (b *builder) buildTilesetBody(e *markup.Element, source string) *Tileset {
	name, _ := e.Attr("name")
	path := joinPath("", "tileset", cmp.Or(name, source))
	a := b.attrs(e, path)

	ts := &Tileset{
		Name:       name,
		TileWidth:  a.int("tilewidth", 0),
		TileHeight: a.int("tileheight", 0),
		Spacing:    a.int("spacing", 0),
		Margin:     a.int("margin", 0),
		TileCount:  a.int("tilecount", 0),
		Columns:    a.int("columns", 0),
		Tiles:      make(map[int]*Tile),
	}

	for _, c := range e.Children {
		switch c.Name() {
		case "tileoffset":
			ca := b.attrs(c, path)
			ts.OffsetX = ca.int("x", 0)
			ts.OffsetY = ca.int("y", 0)
		case "grid":
			ca := b.attrs(c, path)
			ts.Grid = &TilesetGrid{
				Orientation: ca.str("orientation", "orthogonal"),
				Width:       ca.int("width", 0),
				Height:      ca.int("height", 0),
			}
		case "properties":
			ts.Properties = b.buildProperties(c, path)
		case "image":
			ts.Image = b.buildImage(c, path)
		case "terraintypes":
			for _, t := range c.Children {
				if t.Name() != "terrain" {
					continue
				}
				ta := b.attrs(t, path)
				tt := TerrainType{Name: ta.str("name", ""), Tile: ta.int("tile", NoTerrain)}
				if p := t.Child("properties"); p != nil {
					tt.Properties = b.buildProperties(p, joinPath(path, "terrain", tt.Name))
				}
				ts.Terrains = append(ts.Terrains, tt)
			}
		case "tile":
			t := b.buildTile(c, path)
			if t == nil {
				continue
			}
			if _, dup := ts.Tiles[t.ID]; dup {
				b.fail(path, fmt.Errorf("%w: duplicate tile id %d", ErrFormat, t.ID))
				continue
			}
			ts.Tiles[t.ID] = t
		default:
			b.logger.Debug("libtmx: skipping tileset element", "tileset", name, "element", c.Name())
		}
	}
	return ts
}

func (b *builder) buildTile(e *markup.Element, parent string) *Tile {
	a := b.attrs(e, parent)
	id := a.int("id", -1)
	if id < 0 {
		b.fail(parent, fmt.Errorf("%w: tile without a valid id", ErrFormat))
		return nil
	}
	path := parent + "/tile " + strconv.Itoa(id)
	a.path = path

	t := &Tile{
		ID:   id,
		Type: a.str("type", a.str("class", "")),
	}
	if v, ok := e.Attr("terrain"); ok {
		terrain, err := ParseTerrain(v)
		if err != nil {
			b.fail(path, err)
		} else {
			t.Terrain = &terrain
		}
	}
	if _, ok := e.Attr("probability"); ok {
		p := a.float("probability", 1)
		t.Probability = &p
	}

	for _, c := range e.Children {
		switch c.Name() {
		case "properties":
			t.Properties = b.buildProperties(c, path)
		case "image":
			t.Image = b.buildImage(c, path)
		case "animation":
			for _, f := range c.Children {
				if f.Name() != "frame" {
					continue
				}
				fa := b.attrs(f, path)
				t.Animation = append(t.Animation, Frame{
					TileID:   fa.int("tileid", 0),
					Duration: fa.int("duration", 0),
				})
			}
		default:
			b.logger.Debug("libtmx: skipping tile element", "tile", path, "element", c.Name())
		}
	}
	return t
}

func (b *builder) buildImage(e *markup.Element, parent string) *Image {
	a := b.attrs(e, parent)
	img := &Image{
		Format: a.str("format", ""),
		Source: a.str("source", ""),
		Width:  a.int("width", 0),
		Height: a.int("height", 0),
	}
	img.Trans = a.color("trans")

	if d := e.Child("data"); d != nil {
		encoding, _ := d.Attr("encoding")
		compression, _ := d.Attr("compression")
		if encoding != "base64" || compression != "" {
			b.fail(parent, fmt.Errorf("%w: image data must be plain base64", ErrConfig))
			return img
		}
		data, err := base64.StdEncoding.DecodeString(stripSpace(d.Text))
		if err != nil {
			b.fail(parent, fmt.Errorf("%w: image data: %w", ErrFormat, err))
			return img
		}
		img.Data = data
	}
	return img
}

func (b *builder) buildProperties(e *markup.Element, path string) Properties {
	props := Properties{}
	for _, c := range e.Children {
		if c.Name() != "property" {
			continue
		}
		a := b.attrs(c, path)
		name := a.str("name", "")
		typ := PropertyType(a.str("type", ""))
		if typ == TypeClass {
			value := ClassValue{Name: a.str("propertytype", "")}
			if members := c.Child("properties"); members != nil {
				value.Members = b.buildProperties(members, path+"/"+name)
			}
			props = append(props, Property{Name: name, Value: value})
			continue
		}

		text, ok := c.Attr("value")
		if !ok {
			text = c.Text
		}
		value, err := ParseValue(typ, text)
		if err != nil {
			b.fail(path, fmt.Errorf("property %q: %w", name, err))
			continue
		}
		props = append(props, Property{Name: name, Value: value})
	}
	return props
}

func (b *builder) buildLayerInfo(e *markup.Element, path string) LayerInfo {
	a := b.attrs(e, path)
	info := LayerInfo{
		ID:      a.int("id", 0),
		Name:    a.str("name", ""),
		Opacity: a.float("opacity", 1),
		Visible: a.bool("visible", true),
		OffsetX: a.float("offsetx", 0),
		OffsetY: a.float("offsety", 0),
	}
	if info.Opacity < 0 || info.Opacity > 1 {
		b.fail(path, fmt.Errorf("%w: opacity %v outside [0, 1]", ErrFormat, info.Opacity))
	}
	if p := e.Child("properties"); p != nil {
		info.Properties = b.buildProperties(p, path)
	}
	return info
}

func (b *builder) buildLayer(e *markup.Element, parent string, m *Map) (Layer, bool) {
	name, _ := e.Attr("name")
	switch e.Name() {
	case "layer":
		return b.buildTileLayer(e, joinPath(parent, "layer", name), m).Layer(), true
	case "imagelayer":
		path := joinPath(parent, "imagelayer", name)
		l := &ImageLayer{LayerInfo: b.buildLayerInfo(e, path)}
		if img := e.Child("image"); img != nil {
			l.Image = b.buildImage(img, path)
		}
		return l.Layer(), true
	case "objectgroup":
		return b.buildObjectGroup(e, joinPath(parent, "objectgroup", name)).Layer(), true
	case "group":
		path := joinPath(parent, "group", name)
		g := &GroupLayer{LayerInfo: b.buildLayerInfo(e, path)}
		for _, c := range e.Children {
			if l, ok := b.buildLayer(c, path, m); ok {
				g.Layers = append(g.Layers, l)
			}
		}
		return g.Layer(), true
	case "properties":
		return Layer{}, false
	}
	b.logger.Debug("libtmx: skipping element", "path", parent, "element", e.Name())
	return Layer{}, false
}

func (b *builder) buildTileLayer(e *markup.Element, path string, m *Map) *TileLayer {
	a := b.attrs(e, path)
	l := &TileLayer{
		LayerInfo: b.buildLayerInfo(e, path),
		Width:     a.int("width", m.Width),
		Height:    a.int("height", m.Height),
	}
	count, err := cellCount(l.Width, l.Height)
	if err != nil {
		b.fail(path, err)
		return l
	}

	data := e.Child("data")
	if data == nil {
		b.fail(path, fmt.Errorf("%w: tile layer without data", ErrFormat))
		return l
	}
	if data.Child("chunk") != nil {
		b.fail(path, fmt.Errorf("%w: chunked layer data is not supported", ErrConfig))
		return l
	}

	encoding, hasEncoding := data.Attr("encoding")
	compression, _ := data.Attr("compression")
	if !hasEncoding && data.Child("tile") != nil {
		l.Format = codec.Format{Encoding: codec.EncodingXML}
		l.Tiles = b.decodeTileElements(data, path, count)
		return l
	}

	format, err := codec.ParseFormat(encoding, compression)
	if err != nil {
		b.fail(path, err)
		return l
	}
	l.Format = format
	tiles, err := codec.Decode(data.Text, format, count)
	if err != nil {
		b.fail(path, err)
		return l
	}
	l.Tiles = tiles
	b.logger.Debug("libtmx: decoded layer", "layer", path, "format", format.String(), "tiles", count)
	return l
}

func (b *builder) decodeTileElements(data *markup.Element, path string, count int) []tile.LayerTile {
	elements := make([]*markup.Element, 0, len(data.Children))
	for _, c := range data.Children {
		if c.Name() == "tile" {
			elements = append(elements, c)
		}
	}
	if len(elements) != count {
		b.fail(path, fmt.Errorf("%w: tile count does not match layer dimensions (got %d, want %d)",
			ErrFormat, len(elements), count))
		return nil
	}

	tiles := make([]tile.LayerTile, len(elements))
	for i, c := range elements {
		if t := b.attrs(c, path).gid("gid"); t != nil {
			tiles[i] = *t
		}
	}
	return tiles
}

func (b *builder) buildObjectGroup(e *markup.Element, path string) *ObjectGroup {
	a := b.attrs(e, path)
	g := &ObjectGroup{
		LayerInfo: b.buildLayerInfo(e, path),
		Color:     a.color("color"),
		DrawOrder: a.str("draworder", ""),
	}
	for _, c := range e.Children {
		if c.Name() == "object" {
			g.Objects = append(g.Objects, b.buildObject(c, path))
		}
	}
	return g
}

func (b *builder) buildObject(e *markup.Element, parent string) *Object {
	a := b.attrs(e, parent)
	o := &Object{ID: a.int("id", 0)}
	a.path = fmt.Sprintf("%s/object %d", parent, o.ID)

	o.Name = a.str("name", "")
	o.Type = a.str("type", a.str("class", ""))
	o.X = a.float("x", 0)
	o.Y = a.float("y", 0)
	o.Width = a.float("width", 0)
	o.Height = a.float("height", 0)
	o.Rotation = a.float("rotation", 0)
	o.Tile = a.gid("gid")
	o.Visible = a.bool("visible", true)

	for _, c := range e.Children {
		switch c.Name() {
		case "properties":
			o.Properties = b.buildProperties(c, a.path)
		case "ellipse":
			o.Shape = ShapeEllipse
		case "point":
			o.Shape = ShapePoint
		case "polygon", "polyline":
			o.Shape = ShapePolygon
			if c.Name() == "polyline" {
				o.Shape = ShapePolyline
			}
			points, err := parsePoints(b.attrs(c, a.path).str("points", ""))
			if err != nil {
				b.fail(a.path, err)
			}
			o.Points = points
		case "text":
			o.Shape = ShapeText
			o.Text = b.buildText(c, a.path)
		}
	}
	return o
}

func (b *builder) buildText(e *markup.Element, path string) *Text {
	a := b.attrs(e, path)
	t := NewText(e.Text)
	t.FontFamily = a.str("fontfamily", t.FontFamily)
	t.PixelSize = a.int("pixelsize", t.PixelSize)
	t.Wrap = a.bool("wrap", false)
	if c := a.color("color"); c != nil {
		t.Color = *c
	}
	t.Bold = a.bool("bold", false)
	t.Italic = a.bool("italic", false)
	t.Underline = a.bool("underline", false)
	t.Strikeout = a.bool("strikeout", false)
	t.Kerning = a.bool("kerning", true)
	t.HAlign = a.str("halign", t.HAlign)
	t.VAlign = a.str("valign", t.VAlign)
	return t
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
