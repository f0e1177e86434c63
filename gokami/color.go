package gokami

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an opaque, equality-comparable color token.
//
// The universe of colors is open-ended: any int32 is a valid Color.
// A single puzzle instance declares a bounded palette drawn from it.
type Color int32

// The named colors occupy the first slots of the canonical ordering.
const (
	Orange Color = iota
	DarkBlue
	Cream
	Turquoise
)

var colorNames = []string{
	"orange",
	"darkblue",
	"cream",
	"turquoise",
}

func (c Color) String() string {
	if c >= 0 && int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color_%d", int32(c))
}

// Palette returns the first n colors of the canonical ordering.
func Palette(n int) []Color {
	pal := make([]Color, n)
	for i := range pal {
		pal[i] = Color(i)
	}
	return pal
}

// ParseColor accepts a named color ("cream"), a bare integer ("7"),
// or the open-ended form "color_7".
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, known := range colorNames {
		if name == known {
			return Color(i), nil
		}
	}
	name = strings.TrimPrefix(name, "color_")
	v, err := strconv.ParseInt(name, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return Color(v), nil
}
