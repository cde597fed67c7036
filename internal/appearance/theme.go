// Package appearance manages the active theme and the automatic night mode.
package appearance

import (
	"fmt"
	"strings"
)

// Theme is a named color theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeSepia Theme = "sepia"
	ThemeRose  Theme = "theme-rose"
	ThemeBlue  Theme = "theme-blue"
	ThemeGreen Theme = "theme-green"
)

// DefaultTheme is used when no valid theme has been chosen.
const DefaultTheme = ThemeLight

// Themes returns all known themes.
func Themes() []Theme {
	return []Theme{ThemeLight, ThemeDark, ThemeSepia, ThemeRose, ThemeBlue, ThemeGreen}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSepia, ThemeRose, ThemeBlue, ThemeGreen:
		return true
	}
	return false
}

func (t Theme) String() string {
	return string(t)
}

// ParseTheme parses a theme token.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q", s)
	}
	return t, nil
}
