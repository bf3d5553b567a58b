package heatmap

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Default heatmap colours.
const (
	DefaultEmpty = "#FFFFFF"
	DefaultLow   = "#D4F5EF"
	DefaultHigh  = "#03A48C"
)

// Scale maps a count out of a total to a colour.
type Scale struct {
	Empty colorful.Color
	Low   colorful.Color
	High  colorful.Color
}

// Swatch is one legend entry.
type Swatch struct {
	Count int    `json:"count"`
	Color string `json:"color"`
}

// DefaultScale returns the white / mint / teal scale.
func DefaultScale() Scale {
	s, _ := NewScale(DefaultEmpty, DefaultLow, DefaultHigh)
	return s
}

// NewScale parses three hex colours.
func NewScale(empty, low, high string) (Scale, error) {
	e, err := colorful.Hex(empty)
	if err != nil {
		return Scale{}, fmt.Errorf("parsing empty colour: %w", err)
	}
	l, err := colorful.Hex(low)
	if err != nil {
		return Scale{}, fmt.Errorf("parsing low colour: %w", err)
	}
	h, err := colorful.Hex(high)
	if err != nil {
		return Scale{}, fmt.Errorf("parsing high colour: %w", err)
	}
	return Scale{Empty: e, Low: l, High: h}, nil
}

// Color returns the colour for count out of total. A zero count or total is
// Empty; a total of one is High; otherwise Low and High are blended linearly
// in RGB with t = (count-1)/(total-1).
func (s Scale) Color(count, total int) colorful.Color {
	if count <= 0 || total <= 0 {
		return s.Empty
	}
	if total == 1 || count >= total {
		return s.High
	}
	t := float64(count-1) / float64(total-1)
	return s.Low.BlendRgb(s.High, t).Clamped()
}

// Hex returns Color as "#rrggbb".
func (s Scale) Hex(count, total int) string {
	return s.Color(count, total).Hex()
}

// Foreground returns a readable text colour for the cell background.
func (s Scale) Foreground(count, total int) string {
	l, _, _ := s.Color(count, total).Lab()
	if l > 0.7 {
		return "#1e1e2e"
	}
	return "#ffffff"
}

// Legend returns one swatch per count from 0 to total.
func (s Scale) Legend(total int) []Swatch {
	if total < 0 {
		total = 0
	}
	swatches := make([]Swatch, 0, total+1)
	for i := 0; i <= total; i++ {
		swatches = append(swatches, Swatch{Count: i, Color: s.Hex(i, total)})
	}
	return swatches
}
