package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

type Color struct {
	R, G, B byte
}

func NewColor(r, g, b byte) *Color {
	return &Color{r, g, b}
}

func FromColor(c color.Color) *Color {
	r, g, b, _ := c.RGBA()
	return NewColor(byte(r>>8), byte(g>>8), byte(b>>8))
}

// Hex is the canonical form: six lowercase hex characters, no prefix.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(data []byte) error {
	parsed, err := ParseHexColor(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// https://stackoverflow.com/questions/54197913/parse-hex-string-to-image-color
var errInvalidFormat = errors.New("invalid format")

// ParseHexColor accepts exactly six hex characters in either case, optionally
// prefixed with '#'.
func ParseHexColor(s string) (c Color, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return c, errInvalidFormat
	}

	hexToByte := func(b byte) byte {
		switch {
		case b >= '0' && b <= '9':
			return b - '0'
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10
		}
		err = errInvalidFormat
		return 0
	}

	c.R = hexToByte(s[0])<<4 + hexToByte(s[1])
	c.G = hexToByte(s[2])<<4 + hexToByte(s[3])
	c.B = hexToByte(s[4])<<4 + hexToByte(s[5])
	if err != nil {
		return Color{}, err
	}
	return c, nil
}

// Palette restricts the prepared image to a fixed set of colors, for servers
// that only accept a few.
type Palette struct {
	colors []Color
}

func NewPalette(colors ...Color) *Palette {
	return &Palette{colors: colors}
}

// ParsePalette reads a comma separated list of hex colors.
func ParsePalette(s string) (*Palette, error) {
	p := NewPalette()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := ParseHexColor(part)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", part, err)
		}
		p.colors = append(p.colors, c)
	}
	return p, nil
}

func (p *Palette) Len() int {
	return len(p.colors)
}

func (p *Palette) Closest(c Color) (Color, error) {
	if len(p.colors) == 0 {
		return Color{}, fmt.Errorf("palette can't determine color closest to %s because it doesn't have any colors", c)
	}
	minDistance := math.MaxInt
	var closest Color
	for _, color := range p.colors {
		distance := squaredDistance(c, color)
		if distance < minDistance {
			minDistance = distance
			closest = color
		}
	}

	return closest, nil
}

func squaredDistance(a, b Color) int {
	dr, dg, db := int(a.R)-int(b.R), int(a.G)-int(b.G), int(a.B)-int(b.B)
	return dr*dr + dg*dg + db*db
}
