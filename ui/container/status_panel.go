package container

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"verbum-lector/internal/text"
	"verbum-lector/models"
	"verbum-lector/ui/widgets"
)

// StatusPanel shows the loaded file, the detected language and the pipeline
// stage of a session.
type StatusPanel struct {
	widget.BaseWidget

	header   *widgets.SectionHeader
	file     *widget.Label
	language *widget.Label
	stages   *widgets.StageProgress
	status   *widget.Label
	content  fyne.CanvasObject
}

// NewStatusPanel creates a panel. open is the action of its "Open audio"
// button.
func NewStatusPanel(open func()) *StatusPanel {
	p := &StatusPanel{
		header:   widgets.NewSectionHeader("Session"),
		file:     widget.NewLabel("No file selected"),
		language: widget.NewLabel("-"),
		stages:   widgets.NewStageProgress(),
		status:   widget.NewLabel(models.StageIdle.StatusText()),
	}
	p.file.Truncation = fyne.TextTruncateEllipsis
	p.status.Wrapping = fyne.TextWrapWord

	openBtn := widget.NewButton("Open audio...", open)
	openBtn.Importance = widget.HighImportance

	form := widget.NewForm(
		widget.NewFormItem("File", p.file),
		widget.NewFormItem("Language", p.language),
	)
	p.content = container.NewBorder(p.header, nil, nil, nil,
		container.NewVBox(openBtn, form, widget.NewSeparator(), p.stages, p.status),
	)
	p.ExtendBaseWidget(p)
	return p
}

// SetStatus updates the panel from a session status.
func (p *StatusPanel) SetStatus(status models.SessionStatus) {
	if status.FileName != "" {
		p.file.SetText(status.FileName)
	}
	p.language.SetText(languageLine(status))
	p.stages.SetStatus(status)
	p.status.SetText(status.Stage.StatusIcon() + " " + status.StatusText())
}

func languageLine(status models.SessionStatus) string {
	if status.SourceLanguage == "" {
		if status.Detected != nil && status.Detected.LanguageCode != "" {
			return fmt.Sprintf("%s (unsupported)", status.Detected.LanguageCode)
		}
		return "-"
	}
	line := fmt.Sprintf("%s → %s", text.GetLanguageName(status.SourceLanguage), text.GetLanguageName(status.TargetLanguage))
	if status.Detected != nil && status.Detected.Confidence > 0 {
		line += fmt.Sprintf(" (%.0f%%)", status.Detected.Confidence*100)
	}
	return line
}

// CreateRenderer implements fyne.Widget
func (p *StatusPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}
