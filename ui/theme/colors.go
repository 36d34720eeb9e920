package theme

import "image/color"

// Dark palette with a slate background and a teal accent.
var (
	ColorBackground     = color.NRGBA{R: 20, G: 22, B: 26, A: 255} // #14161A
	ColorSurface        = color.NRGBA{R: 29, G: 32, B: 38, A: 255} // #1D2026
	ColorSurfaceVariant = color.NRGBA{R: 38, G: 42, B: 50, A: 255} // #262A32
	ColorOverlay        = color.NRGBA{R: 48, G: 52, B: 61, A: 255} // #30343D

	ColorPrimary   = color.NRGBA{R: 38, G: 166, B: 154, A: 255} // #26A69A
	ColorSecondary = color.NRGBA{R: 128, G: 203, B: 196, A: 255}

	ColorTextPrimary   = color.NRGBA{R: 236, G: 239, B: 241, A: 255}
	ColorTextSecondary = color.NRGBA{R: 144, G: 152, B: 164, A: 255}
	ColorTextDisabled  = color.NRGBA{R: 92, G: 99, B: 110, A: 255}

	ColorStagePending = color.NRGBA{R: 92, G: 99, B: 110, A: 255}
	ColorStageActive  = color.NRGBA{R: 66, G: 165, B: 245, A: 255} // #42A5F5
	ColorStageDone    = color.NRGBA{R: 102, G: 187, B: 106, A: 255}
	ColorError        = color.NRGBA{R: 239, G: 83, B: 80, A: 255}
	ColorWarning      = color.NRGBA{R: 255, G: 202, B: 40, A: 255}

	ColorDivider    = color.NRGBA{R: 50, G: 55, B: 64, A: 255}
	ColorInputBg    = color.NRGBA{R: 25, G: 28, B: 33, A: 255}
	ColorHover      = color.NRGBA{R: 255, G: 255, B: 255, A: 18}
	ColorPressed    = color.NRGBA{R: 255, G: 255, B: 255, A: 32}
	ColorScrollbar  = color.NRGBA{R: 84, G: 90, B: 102, A: 255}
	ColorFocusedRow = color.NRGBA{R: 38, G: 166, B: 154, A: 40}
)

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.Color, alpha uint8) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
