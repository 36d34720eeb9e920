// Package theme is the dark theme of the transcript editor.
package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Color names beyond Fyne's own.
const (
	ColorNameSurface       fyne.ThemeColorName = "surface"
	ColorNameDivider       fyne.ThemeColorName = "divider"
	ColorNameTextSecondary fyne.ThemeColorName = "textSecondary"
	ColorNameFocusedRow    fyne.ThemeColorName = "focusedRow"

	ColorNameStagePending fyne.ThemeColorName = "stagePending"
	ColorNameStageActive  fyne.ThemeColorName = "stageActive"
	ColorNameStageDone    fyne.ThemeColorName = "stageDone"
	ColorNameStageFailed  fyne.ThemeColorName = "stageFailed"
)

const (
	SizeNameStatusWidth fyne.ThemeSizeName = "statusWidth"
)

// Palette of the dark variant. Names not listed fall back to Fyne's default.
var palette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:        ColorBackground,
	theme.ColorNameForeground:        ColorTextPrimary,
	theme.ColorNamePrimary:           ColorPrimary,
	theme.ColorNameButton:            ColorPrimary,
	theme.ColorNameInputBackground:   ColorInputBg,
	theme.ColorNameInputBorder:       ColorDivider,
	theme.ColorNameSeparator:         ColorDivider,
	theme.ColorNamePlaceHolder:       ColorTextSecondary,
	theme.ColorNameFocus:             WithAlpha(ColorPrimary, 180),
	theme.ColorNameSelection:         WithAlpha(ColorPrimary, 80),
	theme.ColorNameHover:             ColorHover,
	theme.ColorNamePressed:           ColorPressed,
	theme.ColorNameDisabled:          ColorTextDisabled,
	theme.ColorNameDisabledButton:    ColorSurfaceVariant,
	theme.ColorNameScrollBar:         ColorScrollbar,
	theme.ColorNameError:             ColorError,
	theme.ColorNameSuccess:           ColorStageDone,
	theme.ColorNameWarning:           ColorWarning,
	theme.ColorNameOverlayBackground: ColorOverlay,
	theme.ColorNameMenuBackground:    ColorSurface,
	theme.ColorNameHeaderBackground:  ColorSurface,
	theme.ColorNameHyperlink:         ColorSecondary,

	ColorNameSurface:       ColorSurface,
	ColorNameDivider:       ColorDivider,
	ColorNameTextSecondary: ColorTextSecondary,
	ColorNameFocusedRow:    ColorFocusedRow,
	ColorNameStagePending:  ColorStagePending,
	ColorNameStageActive:   ColorStageActive,
	ColorNameStageDone:     ColorStageDone,
	ColorNameStageFailed:   ColorError,
}

// Slightly roomier than Fyne's defaults; Hangul reads poorly at 14.
var sizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:        8,
	theme.SizeNameInnerPadding:   6,
	theme.SizeNameText:           15,
	theme.SizeNameHeadingText:    20,
	theme.SizeNameSubHeadingText: 16,
	theme.SizeNameCaptionText:    12,
	theme.SizeNameInputRadius:    6,
	SizeNameStatusWidth:          280,
}

// LectorTheme is the application theme. It always renders the dark variant.
type LectorTheme struct{}

var _ fyne.Theme = (*LectorTheme)(nil)

func (t *LectorTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

// Font returns the default font. Its glyph coverage includes Hangul and
// Vietnamese diacritics.
func (t *LectorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *LectorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *LectorTheme) Size(name fyne.ThemeSizeName) float32 {
	if v, ok := sizes[name]; ok {
		return v
	}
	return theme.DefaultTheme().Size(name)
}
