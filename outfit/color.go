package outfit

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorPoint is a color resolved into HSL for hue-distance comparisons.
type ColorPoint struct {
	Hue        float64 // degrees, 0..360
	Saturation float64 // 0..1
	Lightness  float64 // 0..1
	// Known is false when the source string could not be resolved and the
	// point fell back to neutral gray.
	Known bool
}

// Neutral colors (black, white, grays, low saturation) pair acceptably with
// almost anything, so harmony scoring treats them separately from hued colors.
func (c ColorPoint) Neutral() bool {
	return c.Saturation < 0.16 || c.Lightness < 0.09 || c.Lightness > 0.94
}

// Common wardrobe color names. Vision classification is prompted to answer
// with one of these, but free-form user edits land here too.
var namedColors = map[string]string{
	"black":     "#000000",
	"white":     "#ffffff",
	"gray":      "#808080",
	"grey":      "#808080",
	"charcoal":  "#36454f",
	"ivory":     "#fffff0",
	"cream":     "#fffdd0",
	"beige":     "#f5f5dc",
	"tan":       "#d2b48c",
	"camel":     "#c19a6b",
	"brown":     "#8b4513",
	"chocolate": "#7b3f00",
	"red":       "#ff0000",
	"burgundy":  "#800020",
	"maroon":    "#800000",
	"pink":      "#ffc0cb",
	"blush":     "#de5d83",
	"orange":    "#ffa500",
	"rust":      "#b7410e",
	"coral":     "#ff7f50",
	"yellow":    "#ffd700",
	"mustard":   "#e1ad01",
	"green":     "#008000",
	"olive":     "#6b8e23",
	"khaki":     "#bdb76b",
	"mint":      "#98ff98",
	"teal":      "#008080",
	"turquoise": "#40e0d0",
	"blue":      "#0000ff",
	"navy":      "#000080",
	"denim":     "#1560bd",
	"sky blue":  "#87ceeb",
	"purple":    "#800080",
	"lavender":  "#e6e6fa",
	"lilac":     "#c8a2c8",
	"violet":    "#8f00ff",
	"magenta":   "#ff00ff",
	"gold":      "#ffd700",
	"silver":    "#c0c0c0",
}

var neutralFallback = ColorPoint{Hue: 0, Saturation: 0, Lightness: 0.5, Known: false}

// ParseColor resolves a hex string or color name into a ColorPoint. Malformed
// input returns a neutral gray point rather than an error: every item must
// still produce a harmony value.
func ParseColor(raw string) ColorPoint {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return neutralFallback
	}
	if hex, ok := namedColors[raw]; ok {
		raw = hex
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	c, err := colorful.Hex(raw)
	if err != nil {
		return neutralFallback
	}
	h, s, l := c.Hsl()
	return ColorPoint{Hue: h, Saturation: s, Lightness: l, Known: true}
}

// hueDistance returns the angular distance between two hues in 0..180.
func hueDistance(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Pairwise harmony bands. Complementary hues score highest, analogous hues
// close behind; near-duplicate hues read as flat and score below neutral.
const (
	harmonyNearDuplicate = 0.55
	harmonyAnalogous     = 0.85
	harmonyMidBand       = 0.6
	harmonyTriadic       = 0.68
	harmonyComplementary = 0.9
	harmonyWithNeutral   = 0.8
)

func pairHarmony(a, b ColorPoint) float64 {
	if a.Neutral() || b.Neutral() {
		return harmonyWithNeutral
	}
	switch d := hueDistance(a.Hue, b.Hue); {
	case d <= 15:
		return harmonyNearDuplicate
	case d <= 45:
		return harmonyAnalogous
	case d <= 90:
		return harmonyMidBand
	case d <= 150:
		return harmonyTriadic
	default:
		return harmonyComplementary
	}
}
