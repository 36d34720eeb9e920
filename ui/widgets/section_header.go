package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	appTheme "verbum-lector/ui/theme"
)

// SectionHeader is a bold title with an optional caption and trailing
// actions, drawn above a divider.
type SectionHeader struct {
	widget.BaseWidget

	title   *canvas.Text
	caption *canvas.Text
	actions []fyne.CanvasObject
}

// NewSectionHeader creates a header. Actions are laid out right-aligned.
func NewSectionHeader(title string, actions ...fyne.CanvasObject) *SectionHeader {
	h := &SectionHeader{
		title:   canvas.NewText(title, theme.Color(theme.ColorNameForeground)),
		caption: canvas.NewText("", theme.Color(appTheme.ColorNameTextSecondary)),
		actions: actions,
	}
	h.title.TextStyle = fyne.TextStyle{Bold: true}
	h.title.TextSize = theme.Size(theme.SizeNameSubHeadingText)
	h.caption.TextSize = theme.Size(theme.SizeNameCaptionText)
	h.ExtendBaseWidget(h)
	return h
}

// SetCaption updates the text shown next to the title.
func (h *SectionHeader) SetCaption(caption string) {
	h.caption.Text = caption
	h.caption.Refresh()
}

// CreateRenderer implements fyne.Widget
func (h *SectionHeader) CreateRenderer() fyne.WidgetRenderer {
	divider := canvas.NewRectangle(theme.Color(appTheme.ColorNameDivider))
	divider.SetMinSize(fyne.NewSize(0, 1))

	row := container.NewBorder(nil, nil,
		container.NewHBox(h.title, h.caption),
		container.NewHBox(h.actions...),
	)
	return widget.NewSimpleRenderer(container.NewVBox(row, divider))
}
