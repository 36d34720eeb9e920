package container

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"verbum-lector/models"
	"verbum-lector/ui/widgets"
)

const (
	colID = iota
	colOriginal
	colTranslation
	columns
)

// TranslationPanel shows each segment beside its translation.
type TranslationPanel struct {
	widget.BaseWidget

	rows      []models.TranslationRow
	full      func() string
	header    *widgets.SectionHeader
	translate *widget.Button
	table     *widget.Table
	content   fyne.CanvasObject
}

// NewTranslationPanel creates a panel. onTranslate runs the Translate button;
// full returns the text the copy button puts on the clipboard.
func NewTranslationPanel(onTranslate func(), full func() string) *TranslationPanel {
	p := &TranslationPanel{full: full}

	p.translate = widget.NewButtonWithIcon("Translate", theme.MailForwardIcon(), onTranslate)
	p.translate.Importance = widget.HighImportance
	p.translate.Disable()
	copyAll := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		if p.full != nil {
			fyne.CurrentApp().Clipboard().SetContent(p.full())
		}
	})

	p.table = widget.NewTableWithHeaders(
		func() (int, int) { return len(p.rows), columns },
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(p.cell(id))
		},
	)
	p.table.ShowHeaderColumn = false
	p.table.CreateHeader = func() fyne.CanvasObject { return widget.NewLabel("") }
	p.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		l := o.(*widget.Label)
		l.TextStyle = fyne.TextStyle{Bold: true}
		l.SetText([]string{"#", "Original", "Translation"}[id.Col])
	}
	p.table.SetColumnWidth(colID, 48)
	p.table.SetColumnWidth(colOriginal, 320)
	p.table.SetColumnWidth(colTranslation, 320)

	p.header = widgets.NewSectionHeader("Translation", p.translate, copyAll)
	p.content = container.NewBorder(p.header, nil, nil, nil, p.table)
	p.ExtendBaseWidget(p)
	return p
}

func (p *TranslationPanel) cell(id widget.TableCellID) string {
	if id.Row < 0 || id.Row >= len(p.rows) {
		return ""
	}
	r := p.rows[id.Row]
	switch id.Col {
	case colID:
		return strconv.Itoa(r.SegmentID)
	case colOriginal:
		return r.Original
	default:
		return r.Translation
	}
}

// SetRows replaces the table contents.
func (p *TranslationPanel) SetRows(rows []models.TranslationRow) {
	p.rows = rows
	p.table.Refresh()
}

// SetStatus enables Translate when the session can start a translation.
func (p *TranslationPanel) SetStatus(status models.SessionStatus) {
	switch {
	case status.SegmentCount == 0 || status.Stage.Busy():
		p.translate.Disable()
	case status.Stage == models.StageReady, status.Stage == models.StageTranslated:
		p.translate.Enable()
	case status.Stage == models.StageError && status.Fallback != models.StageIdle:
		p.translate.Enable()
	default:
		p.translate.Disable()
	}
	if status.TargetLanguage != "" {
		p.header.SetCaption("→ " + status.TargetLanguage)
	}
}

// CreateRenderer implements fyne.Widget
func (p *TranslationPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}
