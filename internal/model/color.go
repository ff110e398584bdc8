package model

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is the ordered set of category colors handed out to new categories.
var Palette = []string{
	"#EF6F6C", // coral
	"#465775", // dark-slate
	"#F7B074", // sandy
	"#FFF07C", // maize
	"#ACDD91", // celadon
	"#59C9A5", // mint
	"#50908D", // dark-cyan
	"#715D73", // violet
	"#9B6371", // rose
	"#93A8AC", // cadet
}

var namedColors = map[string]string{
	"cadet":      "#93A8AC",
	"coral":      "#EF6F6C",
	"mint":       "#59C9A5",
	"celadon":    "#ACDD91",
	"violet":     "#715D73",
	"rose":       "#9B6371",
	"dark-slate": "#465775",
	"sandy":      "#F7B074",
	"maize":      "#FFF07C",
	"info":       "#50908D",
	"blue":       "#3b82f6",
	"green":      "#22c55e",
	"amber":      "#f59e0b",
	"purple":     "#a855f7",
	"red":        "#ef4444",
	"orange":     "#f97316",
	"yellow":     "#eab308",
	"teal":       "#14b8a6",
	"cyan":       "#06b6d4",
	"indigo":     "#6366f1",
	"pink":       "#ec4899",
	"gray":       "#6b7280",
	"black":      "#000000",
}

const fallbackColor = "#5f6c80"

// ResolveColor turns a palette token into a literal color. Literal values pass through.
func ResolveColor(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return fallbackColor
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(v, "#") || strings.HasPrefix(lower, "rgb") || strings.HasPrefix(lower, "hsl") {
		return v
	}
	if hex, ok := namedColors[lower]; ok {
		return hex
	}
	return v
}

// InPalette reports whether value is one of the category palette colors.
func InPalette(value string) bool {
	for _, c := range Palette {
		if strings.EqualFold(c, value) {
			return true
		}
	}
	return false
}

// TextColorFor picks a readable foreground for the given background.
// Non-hex backgrounds get white text.
func TextColorFor(bg string) string {
	c, err := colorful.Hex(strings.TrimSpace(bg))
	if err != nil {
		return "#ffffff"
	}
	r, g, b := c.RGB255()
	luminance := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luminance > 186 {
		return "#111111"
	}
	return "#ffffff"
}
