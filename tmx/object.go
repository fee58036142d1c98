package tmx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eak1mov/go-libtmx/tile"
)

type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota
	ShapeEllipse
	ShapePoint
	ShapePolygon
	ShapePolyline
	ShapeText
)

type Point struct {
	X, Y float64
}

type Object struct {
	ID       int
	Name     string
	Type     string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64 // degrees clockwise
	// Tile is set for tile objects.
	Tile       *tile.LayerTile
	Visible    bool
	Properties Properties

	Shape ShapeKind
	// Points are relative to (X, Y); used by polygons and polylines.
	Points []Point
	Text   *Text
}

type Text struct {
	Text       string
	FontFamily string
	PixelSize  int
	Wrap       bool
	Color      Color
	Bold       bool
	Italic     bool
	Underline  bool
	Strikeout  bool
	Kerning    bool
	HAlign     string
	VAlign     string
}

func NewText(text string) *Text {
	return &Text{
		Text:       text,
		FontFamily: "sans-serif",
		PixelSize:  16,
		Color:      Color{A: 0xFF},
		Kerning:    true,
		HAlign:     "left",
		VAlign:     "top",
	}
}

func NewObject(id int, name string, x, y, width, height float64) *Object {
	return &Object{ID: id, Name: name, X: x, Y: y, Width: width, Height: height, Visible: true}
}

func parsePoints(s string) ([]Point, error) {
	fields := strings.Fields(s)
	points := make([]Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("%w: point %q", ErrFormat, f)
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: point %q", ErrFormat, f)
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}

func formatPoints(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
	}
	return strings.Join(parts, " ")
}
