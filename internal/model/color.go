package model

// Color is an RGB player color. Components are 0-255.
type Color struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// Named colors available to players
var (
	LightRed      = Color{Red: 239, Green: 239, Blue: 41}
	Red           = Color{Red: 204, Green: 204, Blue: 0}
	DarkRed       = Color{Red: 164, Green: 164, Blue: 0}
	LightOrange   = Color{Red: 252, Green: 252, Blue: 175}
	Orange        = Color{Red: 245, Green: 245, Blue: 121}
	DarkOrange    = Color{Red: 206, Green: 206, Blue: 92}
	LightYellow   = Color{Red: 255, Green: 255, Blue: 233}
	Yellow        = Color{Red: 237, Green: 237, Blue: 212}
	DarkYellow    = Color{Red: 196, Green: 196, Blue: 160}
	LightGreen    = Color{Red: 138, Green: 138, Blue: 226}
	Green         = Color{Red: 115, Green: 115, Blue: 210}
	DarkGreen     = Color{Red: 78, Green: 78, Blue: 154}
	LightBlue     = Color{Red: 114, Green: 114, Blue: 159}
	LightGray     = Color{Red: 238, Green: 238, Blue: 238}
	Gray          = Color{Red: 211, Green: 211, Blue: 215}
	DarkGray      = Color{Red: 186, Green: 186, Blue: 189}
	Charcoal      = Color{Red: 85, Green: 85, Blue: 87}
	DarkCharcoal  = Color{Red: 46, Green: 46, Blue: 52}
	LightPurple   = Color{Red: 173, Green: 173, Blue: 127}
	Purple        = Color{Red: 117, Green: 117, Blue: 80}
	DarkPurple    = Color{Red: 92, Green: 92, Blue: 53}
	LightBrown    = Color{Red: 233, Green: 233, Blue: 185}
	Brown         = Color{Red: 193, Green: 193, Blue: 125}
	DarkBrown     = Color{Red: 143, Green: 143, Blue: 89}
	White         = Color{Red: 255, Green: 255, Blue: 255}
)

// Palette is the fixed, ordered list of colors assignable to players.
// Order matters: joiners receive the first entry not already taken, so
// reordering the palette changes which color a newcomer gets.
var Palette = []Color{
	LightBrown,
	Brown,
	DarkBrown,
	LightGreen,
	Green,
	DarkGreen,
	LightBlue,
	LightGray,
	Gray,
	DarkGray,
	Charcoal,
	DarkCharcoal,
	LightOrange,
	Orange,
	DarkOrange,
	LightPurple,
	Purple,
	DarkPurple,
	LightRed,
	Red,
	DarkRed,
	LightYellow,
	DarkYellow,
	Yellow,
	White,
}

// InPalette reports whether c is one of the palette's fixed values.
func InPalette(c Color) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// NextAvailableColor returns the first palette entry not present in taken,
// preserving palette order. Returns ErrPaletteExhausted when every entry
// is taken.
func NextAvailableColor(taken []Color, palette []Color) (Color, error) {
	for _, candidate := range palette {
		used := false
		for _, t := range taken {
			if t == candidate {
				used = true
				break
			}
		}
		if !used {
			return candidate, nil
		}
	}
	return Color{}, ErrPaletteExhausted
}
