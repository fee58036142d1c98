package tmx

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a non-premultiplied color as written in TMX documents:
// "#RRGGBB" or "#AARRGGBB".
type Color struct {
	R, G, B, A uint8
}

func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: invalid color %q", ErrFormat, s)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: invalid color %q", ErrFormat, s)
	}
	c := Color{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xFF,
	}
	if len(hex) == 8 {
		c.A = uint8(value >> 24)
	}
	return c, nil
}

func (c Color) String() string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	a |= a << 8
	r = uint32(c.R)
	r |= r << 8
	r = r * a / 0xFFFF
	g = uint32(c.G)
	g |= g << 8
	g = g * a / 0xFFFF
	b = uint32(c.B)
	b |= b << 8
	b = b * a / 0xFFFF
	return
}
