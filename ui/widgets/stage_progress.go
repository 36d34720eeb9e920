package widgets

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"verbum-lector/models"
	appTheme "verbum-lector/ui/theme"
)

type step struct {
	label  string
	stages []models.Stage
}

// steps are the dots of the tracker. A step is current while the session is
// in one of its stages.
var steps = []step{
	{"Detect", []models.Stage{models.StageDetectingLanguage}},
	{"Transcribe", []models.Stage{models.StageTranscribing}},
	{"Edit", []models.Stage{models.StageReady}},
	{"Translate", []models.Stage{models.StageTranslating}},
	{"Done", []models.Stage{models.StageTranslated}},
}

func stepIndex(stage models.Stage) int {
	for i, s := range steps {
		for _, st := range s.stages {
			if st == stage {
				return i
			}
		}
	}
	return -1
}

// StageProgress draws the session pipeline as a row of dots with a progress
// bar underneath.
type StageProgress struct {
	widget.BaseWidget

	current  int
	failed   bool
	progress int
}

// NewStageProgress creates a tracker in the idle state.
func NewStageProgress() *StageProgress {
	p := &StageProgress{current: -1}
	p.ExtendBaseWidget(p)
	return p
}

// SetStatus moves the tracker to the status' stage. On error the step that
// was running is marked failed.
func (p *StageProgress) SetStatus(status models.SessionStatus) {
	p.progress = status.Progress
	p.failed = status.Stage == models.StageError
	if !p.failed {
		p.current = stepIndex(status.Stage)
	}
	p.Refresh()
}

// CreateRenderer implements fyne.Widget
func (p *StageProgress) CreateRenderer() fyne.WidgetRenderer {
	r := &stageProgressRenderer{
		widget:   p,
		dots:     make([]*canvas.Circle, len(steps)),
		labels:   make([]*canvas.Text, len(steps)),
		links:    make([]*canvas.Rectangle, len(steps)-1),
		barBg:    canvas.NewRectangle(appTheme.ColorSurfaceVariant),
		barFill:  canvas.NewRectangle(color.Transparent),
		barLabel: canvas.NewText("", color.White),
	}
	for i, s := range steps {
		r.dots[i] = canvas.NewCircle(color.Transparent)
		r.labels[i] = canvas.NewText(s.label, color.White)
		r.labels[i].TextSize = 11
		r.labels[i].Alignment = fyne.TextAlignCenter
		if i > 0 {
			r.links[i-1] = canvas.NewRectangle(color.Transparent)
		}
	}
	r.barBg.CornerRadius = 2
	r.barFill.CornerRadius = 2
	r.barLabel.TextSize = 11
	r.Refresh()
	return r
}

type stageProgressRenderer struct {
	widget   *StageProgress
	dots     []*canvas.Circle
	labels   []*canvas.Text
	links    []*canvas.Rectangle
	barBg    *canvas.Rectangle
	barFill  *canvas.Rectangle
	barLabel *canvas.Text
}

const (
	stagePadding = float32(12)
	stageDot     = float32(10)
	stageBar     = float32(4)
)

func (r *stageProgressRenderer) Destroy() {}

func (r *stageProgressRenderer) Layout(size fyne.Size) {
	slot := (size.Width - stagePadding*2) / float32(len(steps))
	center := func(i int) float32 { return stagePadding + slot*float32(i) + slot/2 }
	y := stagePadding

	for i := range steps {
		x := center(i)
		r.dots[i].Resize(fyne.NewSquareSize(stageDot))
		r.dots[i].Move(fyne.NewPos(x-stageDot/2, y))

		ls := r.labels[i].MinSize()
		r.labels[i].Move(fyne.NewPos(x-ls.Width/2, y+stageDot+4))

		if i > 0 {
			from := center(i-1) + stageDot/2
			r.links[i-1].Resize(fyne.NewSize(x-stageDot/2-from, 2))
			r.links[i-1].Move(fyne.NewPos(from, y+stageDot/2-1))
		}
	}

	barY := y + stageDot + 4 + r.labels[0].MinSize().Height + 10
	width := size.Width - stagePadding*2
	r.barBg.Resize(fyne.NewSize(width, stageBar))
	r.barBg.Move(fyne.NewPos(stagePadding, barY))
	r.barFill.Resize(fyne.NewSize(width*float32(clampPercent(r.widget.progress))/100, stageBar))
	r.barFill.Move(fyne.NewPos(stagePadding, barY))
	r.barLabel.Move(fyne.NewPos(size.Width-stagePadding-r.barLabel.MinSize().Width, barY+stageBar+4))
}

func (r *stageProgressRenderer) MinSize() fyne.Size {
	label := r.labels[0].MinSize().Height
	return fyne.NewSize(300, stagePadding*2+stageDot+4+label+10+stageBar+4+label)
}

func (r *stageProgressRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(steps)*3+3)
	for _, l := range r.links {
		objs = append(objs, l)
	}
	for i := range steps {
		objs = append(objs, r.dots[i], r.labels[i])
	}
	return append(objs, r.barBg, r.barFill, r.barLabel)
}

func (r *stageProgressRenderer) Refresh() {
	p := r.widget
	for i := range steps {
		dot := theme.Color(appTheme.ColorNameStagePending)
		label := theme.Color(appTheme.ColorNameTextSecondary)
		switch {
		case i == p.current && p.failed:
			dot = theme.Color(appTheme.ColorNameStageFailed)
			label = dot
		case i == p.current:
			dot = theme.Color(appTheme.ColorNameStageActive)
			label = theme.Color(theme.ColorNamePrimary)
		case i < p.current:
			dot = theme.Color(appTheme.ColorNameStageDone)
			label = theme.Color(theme.ColorNameForeground)
		}
		r.dots[i].FillColor = dot
		r.dots[i].Refresh()
		r.labels[i].Color = label
		r.labels[i].Refresh()

		if i > 0 {
			link := theme.Color(appTheme.ColorNameStagePending)
			if i <= p.current {
				link = theme.Color(appTheme.ColorNameStageDone)
			}
			r.links[i-1].FillColor = link
			r.links[i-1].Refresh()
		}
	}

	switch {
	case p.failed:
		r.barFill.FillColor = theme.Color(appTheme.ColorNameStageFailed)
	case p.current >= 0:
		r.barFill.FillColor = theme.Color(theme.ColorNamePrimary)
	default:
		r.barFill.FillColor = color.Transparent
	}
	r.barFill.Refresh()

	r.barLabel.Text = fmt.Sprintf("%d%%", clampPercent(p.progress))
	r.barLabel.Color = theme.Color(theme.ColorNameForeground)
	r.barLabel.Refresh()
	r.Layout(p.Size())
}

func clampPercent(v int) int {
	return max(0, min(v, 100))
}
