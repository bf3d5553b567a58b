package theme

import (
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{"load mocha theme", "mocha", "mocha"},
		{"load macchiato theme", "macchiato", "macchiato"},
		{"load frappe theme", "frappe", "frappe"},
		{"load latte theme", "latte", "latte"},
		{"load light theme", "light", "light"},
		{"case insensitive", "Latte", "latte"},
		{"empty name defaults to mocha", "", "mocha"},
		{"invalid theme falls back to mocha", "nonexistent", "mocha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.themeName, err)
			}
			if theme.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, theme.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_AllThemesComplete(t *testing.T) {
	for _, name := range Available() {
		theme, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		fields := map[string]string{
			"bg":           theme.Bg,
			"bg_highlight": theme.BgHighlight,
			"bg_selection": theme.BgSelection,
			"fg":           theme.Fg,
			"fg_muted":     theme.FgMuted,
			"accent":       theme.Accent,
			"selected":     theme.Selected,
			"warning":      theme.Warning,
			"success":      theme.Success,
		}
		for field, value := range fields {
			if len(value) != 7 || value[0] != '#' {
				t.Errorf("%s.%s = %q, want #rrggbb", name, field, value)
			}
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	theme := &Theme{Bg: "#000000", Fg: "#ffffff", Accent: "#ff0000"}
	theme.applyDefaults()

	if theme.BgHighlight != "#000000" || theme.BgSelection != "#000000" {
		t.Errorf("backgrounds = %q, %q", theme.BgHighlight, theme.BgSelection)
	}
	if theme.FgMuted != "#ffffff" {
		t.Errorf("FgMuted = %q", theme.FgMuted)
	}
	if theme.Selected != "#ff0000" || theme.Success != "#ff0000" {
		t.Errorf("Selected = %q, Success = %q", theme.Selected, theme.Success)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"mocha", true},
		{"LATTE", true},
		{"light", true},
		{"dracula", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAvailable(tt.name); got != tt.want {
			t.Errorf("IsAvailable(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
