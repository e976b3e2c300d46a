// Package prefs persists the display preferences that live next to the history.
package prefs

import (
	"context"
	"fmt"
	"strings"

	"weather-lookup/storage"
)

// ThemeKey is the storage slot holding the theme preference
const ThemeKey = "theme"

// Theme is the color scheme of the presentation layer
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" in any case
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Themes reads and writes the persisted theme
type Themes struct {
	kv       storage.KV
	fallback Theme
}

// NewThemes creates a theme store; fallback is used when nothing valid is stored
func NewThemes(kv storage.KV, fallback Theme) *Themes {
	if fallback != Dark {
		fallback = Light
	}
	return &Themes{kv: kv, fallback: fallback}
}

// Load returns the stored theme, or the fallback when absent or unrecognized
func (t *Themes) Load(ctx context.Context) (Theme, error) {
	raw, found, err := t.kv.Get(ctx, ThemeKey)
	if err != nil {
		return t.fallback, fmt.Errorf("failed to read theme: %w", err)
	}
	if !found {
		return t.fallback, nil
	}
	theme, err := ParseTheme(string(raw))
	if err != nil {
		return t.fallback, nil
	}
	return theme, nil
}

func (t *Themes) Set(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return t.kv.Set(ctx, ThemeKey, []byte(theme))
}

// Toggle flips between light and dark and returns the new theme
func (t *Themes) Toggle(ctx context.Context) (Theme, error) {
	current, err := t.Load(ctx)
	if err != nil {
		return current, err
	}
	next := Dark
	if current == Dark {
		next = Light
	}
	if err := t.Set(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
