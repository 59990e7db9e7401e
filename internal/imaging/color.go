package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownColor is returned when a color name is not in the named table.
var ErrUnknownColor = errors.New("unknown color")

// Mode selects the channel order of color triplets.
type Mode string

const (
	RGB Mode = "rgb"
	BGR Mode = "bgr"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case RGB, BGR:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want rgb or bgr)", s)
}

// namedColors is kept in B,G,R order.
var namedColors = map[string][3]uint8{
	"black":   {0, 0, 0},
	"blue":    {255, 0, 0},
	"cyan":    {255, 255, 0},
	"green":   {0, 255, 0},
	"magenta": {255, 0, 255},
	"purple":  {128, 0, 128},
	"red":     {0, 0, 255},
	"white":   {255, 255, 255},
	"yellow":  {0, 255, 255},
}

// Color bar axes in 8-bit HSV. Each axis is cycled independently, so the
// bar has len(barHue)*len(barSat)*len(barVal) entries.
var (
	barHue = []uint8{180, 90, 120, 60, 160, 10, 100, 40, 150, 30, 140, 80, 20}
	barSat = []uint8{250, 140, 160, 190, 220}
	barVal = []uint8{250, 180, 90, 210, 130}
)

// HSVToRGBA converts an 8-bit HSV triple (H 0-180) to RGBA.
func HSVToRGBA(h, s, v uint8) color.RGBA {
	c := colorful.Hsv(math.Mod(float64(h)*2, 360), float64(s)/255, float64(v)/255)
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RGBAToHSV converts a color to an 8-bit HSV triple (H 0-180).
func RGBAToHSV(c color.Color) (h, s, v uint8) {
	cf, _ := colorful.MakeColor(c)
	hf, sf, vf := cf.Hsv()
	return clampByte(math.Round(hf/2)) % 180, clampByte(math.Round(sf * 255)), clampByte(math.Round(vf * 255))
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f)
}

// CreateColorBar generates the 325-entry synthetic palette. With withBlack
// the bar starts with an extra black entry.
func CreateColorBar(withBlack bool) []color.RGBA {
	n := len(barHue) * len(barSat) * len(barVal)
	bar := make([]color.RGBA, 0, n+1)
	if withBlack {
		bar = append(bar, color.RGBA{A: 255})
	}
	for i := 0; i < n; i++ {
		bar = append(bar, HSVToRGBA(barHue[i%len(barHue)], barSat[i%len(barSat)], barVal[i%len(barVal)]))
	}
	return bar
}

// ColorBar exposes the synthetic palette and the named color table in one
// channel order.
type ColorBar struct {
	Mode Mode
	bar  []color.RGBA
}

// NewColorBar builds a ColorBar. blackInBar prepends black to the palette.
func NewColorBar(mode Mode, blackInBar bool) (*ColorBar, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	return &ColorBar{Mode: mode, bar: CreateColorBar(blackInBar)}, nil
}

func (cb *ColorBar) triplet(c color.RGBA) [3]uint8 {
	if cb.Mode == BGR {
		return [3]uint8{c.B, c.G, c.R}
	}
	return [3]uint8{c.R, c.G, c.B}
}

// Bar returns the palette as triplets in the bar's channel order.
func (cb *ColorBar) Bar() [][3]uint8 {
	out := make([][3]uint8, len(cb.bar))
	for i, c := range cb.bar {
		out[i] = cb.triplet(c)
	}
	return out
}

// Palette returns the palette as RGBA colors.
func (cb *ColorBar) Palette() []color.RGBA {
	out := make([]color.RGBA, len(cb.bar))
	copy(out, cb.bar)
	return out
}

// Color looks up a named color and returns it in the bar's channel order.
func (cb *ColorBar) Color(name string) ([3]uint8, error) {
	c, err := NamedColor(name)
	if err != nil {
		return [3]uint8{}, err
	}
	return cb.triplet(c), nil
}

// NamedColors lists the names of the named color table, sorted.
func NamedColors() []string {
	names := make([]string, 0, len(namedColors))
	for k := range namedColors {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NamedColor returns a color from the named table. Lookup is case-insensitive.
func NamedColor(name string) (color.RGBA, error) {
	bgr, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return color.RGBA{R: bgr[2], G: bgr[1], B: bgr[0], A: 255}, nil
}

// ParseColor accepts a color name from the named table or a hex string.
func ParseColor(s string) (color.RGBA, error) {
	if c, err := NamedColor(s); err == nil {
		return c, nil
	}
	c, err := ParseHexColor(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return c, nil
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	hex = strings.TrimPrefix(hex, "#")

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	switch len(hex) {
	case 6:
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex color length")
}

// ColorResult describes one color in several notations.
type ColorResult struct {
	Name string   `json:"name,omitempty"`
	Hex  string   `json:"hex"`
	RGB  [3]uint8 `json:"rgb"`
	BGR  [3]uint8 `json:"bgr"`
	// HSV uses the 8-bit convention (H 0-180).
	HSV [3]uint8 `json:"hsv"`
}

// Describe returns c in every notation used by the tools.
func Describe(name string, c color.RGBA) ColorResult {
	h, s, v := RGBAToHSV(c)
	return ColorResult{
		Name: name,
		Hex:  fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGB:  [3]uint8{c.R, c.G, c.B},
		BGR:  [3]uint8{c.B, c.G, c.R},
		HSV:  [3]uint8{h, s, v},
	}
}

// PaletteImage renders colors as a horizontal strip of swatch x height
// blocks, the way the palette command previews a color bar.
func PaletteImage(colors []color.RGBA, swatch, height int) *image.RGBA {
	if swatch < 1 {
		swatch = 1
	}
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, len(colors)*swatch, height))
	for i, c := range colors {
		for y := 0; y < height; y++ {
			for x := i * swatch; x < (i+1)*swatch; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}
