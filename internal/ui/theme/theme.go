// Package theme provides the semantic color system for the segunda UI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the semantic colors the UI draws with.
// All methods return AdaptiveColor for automatic light/dark terminal support.
type Theme interface {
	Primary() lipgloss.AdaptiveColor   // Title bar, focused button
	Secondary() lipgloss.AdaptiveColor // Labels, links
	Accent() lipgloss.AdaptiveColor    // Version numbers

	Error() lipgloss.AdaptiveColor
	Warning() lipgloss.AdaptiveColor
	Success() lipgloss.AdaptiveColor

	Text() lipgloss.AdaptiveColor
	TextMuted() lipgloss.AdaptiveColor

	Background() lipgloss.AdaptiveColor
	BackgroundSecondary() lipgloss.AdaptiveColor // Dialog surface

	BorderNormal() lipgloss.AdaptiveColor
	BorderFocused() lipgloss.AdaptiveColor
}

// Palette is a Theme backed by fixed light/dark hex pairs.
type Palette struct {
	PrimaryColor             lipgloss.AdaptiveColor
	SecondaryColor           lipgloss.AdaptiveColor
	AccentColor              lipgloss.AdaptiveColor
	ErrorColor               lipgloss.AdaptiveColor
	WarningColor             lipgloss.AdaptiveColor
	SuccessColor             lipgloss.AdaptiveColor
	TextColor                lipgloss.AdaptiveColor
	TextMutedColor           lipgloss.AdaptiveColor
	BackgroundColor          lipgloss.AdaptiveColor
	BackgroundSecondaryColor lipgloss.AdaptiveColor
	BorderNormalColor        lipgloss.AdaptiveColor
	BorderFocusedColor       lipgloss.AdaptiveColor
}

func (p Palette) Primary() lipgloss.AdaptiveColor   { return p.PrimaryColor }
func (p Palette) Secondary() lipgloss.AdaptiveColor { return p.SecondaryColor }
func (p Palette) Accent() lipgloss.AdaptiveColor    { return p.AccentColor }
func (p Palette) Error() lipgloss.AdaptiveColor     { return p.ErrorColor }
func (p Palette) Warning() lipgloss.AdaptiveColor   { return p.WarningColor }
func (p Palette) Success() lipgloss.AdaptiveColor   { return p.SuccessColor }
func (p Palette) Text() lipgloss.AdaptiveColor      { return p.TextColor }
func (p Palette) TextMuted() lipgloss.AdaptiveColor { return p.TextMutedColor }

func (p Palette) Background() lipgloss.AdaptiveColor { return p.BackgroundColor }

func (p Palette) BackgroundSecondary() lipgloss.AdaptiveColor {
	return p.BackgroundSecondaryColor
}

func (p Palette) BorderNormal() lipgloss.AdaptiveColor  { return p.BorderNormalColor }
func (p Palette) BorderFocused() lipgloss.AdaptiveColor { return p.BorderFocusedColor }

func c(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}
