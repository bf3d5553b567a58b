package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/javiermolinar/quorum/internal/heatmap"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Warning     lipgloss.Color
	Success     lipgloss.Color

	// Grid cell backgrounds by selection state
	CellEmpty           lipgloss.Color
	CellSelected        lipgloss.Color
	CellPendingSelect   lipgloss.Color
	CellPendingDeselect lipgloss.Color

	TextOnAccent   lipgloss.Color
	TextOnSelected lipgloss.Color
	TextOnPending  lipgloss.Color

	Scale heatmap.Scale
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load("mocha")
	}

	light := IsLight(t.Bg)
	pendingSelect := Blend(t.Selected, t.BgHighlight, 0.55)
	pendingDeselect := Blend(t.Warning, t.BgHighlight, 0.55)
	if light {
		pendingSelect = Blend(t.Selected, t.Bg, 0.7)
		pendingDeselect = Blend(t.Warning, t.Bg, 0.7)
	}

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Warning:     lipgloss.Color(t.Warning),
		Success:     lipgloss.Color(t.Success),

		CellEmpty:           lipgloss.Color(t.BgHighlight),
		CellSelected:        lipgloss.Color(t.Selected),
		CellPendingSelect:   lipgloss.Color(pendingSelect),
		CellPendingDeselect: lipgloss.Color(pendingDeselect),

		TextOnAccent:   lipgloss.Color(ChooseText(t.Accent, t.Bg, t.Fg)),
		TextOnSelected: lipgloss.Color(ChooseText(t.Selected, t.Bg, t.Fg)),
		TextOnPending:  lipgloss.Color(ChooseText(pendingSelect, t.Bg, t.Fg)),

		Scale: heatScale(t),
	}
}

// heatScale builds the heatmap scale, keeping the standard colors for any
// stop the theme leaves unset.
func heatScale(t *Theme) heatmap.Scale {
	def := heatmap.DefaultScale()
	scale, err := heatmap.NewScale(
		coalesce(t.HeatEmpty, def.Empty.Hex()),
		coalesce(t.HeatLow, def.Low.Hex()),
		coalesce(t.HeatHigh, def.High.Hex()),
	)
	if err != nil {
		return def
	}
	return scale
}

// IsLight reports whether bg is a light background.
func IsLight(bg string) bool {
	return Luminance(bg) > 0.55
}

// Blend mixes a towards b by ratio (0 keeps a, 1 yields b). Invalid colors
// return a unchanged.
func Blend(a, b string, ratio float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	ratio = min(max(ratio, 0), 1)
	return ca.BlendRgb(cb, ratio).Clamped().Hex()
}

// Luminance returns the WCAG relative luminance of a hex color, 0 if invalid.
func Luminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio returns the WCAG contrast ratio between two colors.
func ContrastRatio(a, b string) float64 {
	l1, l2 := Luminance(a), Luminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// ChooseText picks whichever of the two text colors reads better on bg.
func ChooseText(bg, textA, textB string) string {
	if ContrastRatio(bg, textA) >= ContrastRatio(bg, textB) {
		return textA
	}
	return textB
}
