package layouts

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	appTheme "verbum-lector/ui/theme"
)

// SidebarLayout puts objects[0] in a column on the left whose width comes
// from the theme, and gives the rest of the space to objects[1].
type SidebarLayout struct{}

// NewSidebarLayout creates the layout.
func NewSidebarLayout() *SidebarLayout {
	return &SidebarLayout{}
}

func (l *SidebarLayout) widths(total float32) (side, gap float32) {
	side = theme.Size(appTheme.SizeNameStatusWidth)
	gap = theme.Padding()
	if side > total/2 {
		side = total / 2
	}
	return side, gap
}

// Layout arranges the objects: [0] = sidebar, [1] = content
func (l *SidebarLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	side, gap := l.widths(size.Width)

	objects[0].Resize(fyne.NewSize(side, size.Height))
	objects[0].Move(fyne.NewPos(0, 0))

	objects[1].Resize(fyne.NewSize(max(size.Width-side-gap, 0), size.Height))
	objects[1].Move(fyne.NewPos(side+gap, 0))
}

// MinSize returns the minimum size needed for the layout
func (l *SidebarLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 2 {
		return fyne.NewSize(0, 0)
	}
	side := theme.Size(appTheme.SizeNameStatusWidth)
	a, b := objects[0].MinSize(), objects[1].MinSize()
	return fyne.NewSize(side+theme.Padding()+b.Width, max(a.Height, b.Height))
}
