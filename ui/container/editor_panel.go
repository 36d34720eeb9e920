package container

import (
	"errors"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"verbum-lector/internal/editor"
	"verbum-lector/internal/logger"
	"verbum-lector/services"
	"verbum-lector/ui/widgets"
)

// SegmentEditor is the part of a session the editor panel drives.
type SegmentEditor interface {
	Segments() []editor.Segment
	UpdateText(id int, text string) error
	InsertAfter(position int) (editor.Segment, int, error)
	Remove(id int) error
	Focus(index, offset int)
	MoveCursor(offset int)
	Blur(offset int)
	SplitAtFocus() (editor.FocusRequest, error)
	InsertAfterFocused() (editor.FocusRequest, error)
	FullTranscript() string
}

// EditorPanel lists the transcript segments as editable lines.
type EditorPanel struct {
	widget.BaseWidget

	window  fyne.Window
	session SegmentEditor
	log     *logger.Logger

	header  *widgets.SectionHeader
	list    *fyne.Container
	entries []*widgets.SegmentEntry
	content fyne.CanvasObject

	// OnError reports edits the session rejected.
	OnError func(err error)
}

// NewEditorPanel creates an empty panel.
func NewEditorPanel(w fyne.Window) *EditorPanel {
	p := &EditorPanel{
		window: w,
		log:    logger.With("ui.editor"),
		list:   container.NewVBox(),
	}

	lineBreak := widget.NewButtonWithIcon("Line Break", theme.ContentAddIcon(), p.splitAtFocus)
	addLine := widget.NewButtonWithIcon("", theme.ListIcon(), p.insertAfterFocused)
	copyAll := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), p.copyTranscript)

	p.header = widgets.NewSectionHeader("Transcript", lineBreak, addLine, copyAll)
	p.content = container.NewBorder(p.header, nil, nil, nil, container.NewVScroll(p.list))
	p.ExtendBaseWidget(p)
	return p
}

// SetSession points the panel at a session and shows its segments.
func (p *EditorPanel) SetSession(s SegmentEditor) {
	p.session = s
	if s != nil {
		p.SetSegments(s.Segments())
	}
}

// SetSegments shows segs. Rows are rebuilt only when the ids changed, so an
// entry being typed in keeps its cursor.
func (p *EditorPanel) SetSegments(segs []editor.Segment) {
	p.header.SetCaption(segmentCount(len(segs)))
	if sameIDs(p.entries, segs) {
		for i, seg := range segs {
			if p.entries[i].Text != seg.Text {
				p.entries[i].SetText(seg.Text)
			}
		}
		return
	}

	p.entries = make([]*widgets.SegmentEntry, len(segs))
	rows := make([]fyne.CanvasObject, len(segs))
	for i, seg := range segs {
		e := p.newEntry(seg)
		p.entries[i] = e
		rows[i] = p.row(e)
	}
	p.list.Objects = rows
	p.list.Refresh()
}

func sameIDs(entries []*widgets.SegmentEntry, segs []editor.Segment) bool {
	if len(entries) != len(segs) {
		return false
	}
	for i := range segs {
		if entries[i].SegmentID != segs[i].ID {
			return false
		}
	}
	return true
}

func segmentCount(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 segment"
	}
	return strconv.Itoa(n) + " segments"
}

func (p *EditorPanel) newEntry(seg editor.Segment) *widgets.SegmentEntry {
	e := widgets.NewSegmentEntry(seg.ID, seg.Text)
	e.SetPlaceHolder("Empty segment")
	e.OnChanged = func(text string) {
		if p.session == nil {
			return
		}
		if err := p.session.UpdateText(e.SegmentID, text); err != nil {
			p.report(err)
			if orig, ok := p.textOf(e.SegmentID); ok {
				e.SetText(orig)
			}
		}
	}
	e.OnFocus = func(e *widgets.SegmentEntry) {
		if p.session != nil {
			p.session.Focus(p.indexOf(e.SegmentID), e.CursorOffset())
		}
	}
	e.OnCursor = func(e *widgets.SegmentEntry) {
		if p.session != nil {
			p.session.MoveCursor(e.CursorOffset())
		}
	}
	e.OnBlur = func(e *widgets.SegmentEntry) {
		if p.session != nil {
			p.session.Blur(e.CursorOffset())
		}
	}
	e.OnSplit = func(*widgets.SegmentEntry) { p.splitAtFocus() }
	return e
}

func (p *EditorPanel) row(e *widgets.SegmentEntry) fyne.CanvasObject {
	insert := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		p.insertAfter(e.SegmentID)
	})
	insert.Importance = widget.LowImportance
	remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		p.remove(e.SegmentID)
	})
	remove.Importance = widget.LowImportance
	return container.NewBorder(nil, nil, nil, container.NewHBox(insert, remove), e)
}

func (p *EditorPanel) indexOf(id int) int {
	for i, e := range p.entries {
		if e.SegmentID == id {
			return i
		}
	}
	return -1
}

func (p *EditorPanel) textOf(id int) (string, bool) {
	for _, seg := range p.session.Segments() {
		if seg.ID == id {
			return seg.Text, true
		}
	}
	return "", false
}

// ApplyFocus moves keyboard focus to the requested segment.
func (p *EditorPanel) ApplyFocus(req editor.FocusRequest) {
	i := p.indexOf(req.SegmentID)
	if i < 0 {
		return
	}
	e := p.entries[i]
	if p.window.Canvas().Focused() != e {
		p.window.Canvas().Focus(e)
	}
	e.SetCursorOffset(req.CursorOffset)
}

func (p *EditorPanel) splitAtFocus() {
	p.focusEdit(func() (editor.FocusRequest, error) { return p.session.SplitAtFocus() })
}

func (p *EditorPanel) insertAfterFocused() {
	p.focusEdit(func() (editor.FocusRequest, error) { return p.session.InsertAfterFocused() })
}

// focusEdit runs an edit that moves focus. The rows are refreshed right away
// so the new entry exists before it is focused.
func (p *EditorPanel) focusEdit(edit func() (editor.FocusRequest, error)) {
	if p.session == nil {
		return
	}
	req, err := edit()
	if err != nil {
		if !errors.Is(err, services.ErrNoFocus) {
			p.report(err)
		}
		return
	}
	p.SetSegments(p.session.Segments())
	p.ApplyFocus(req)
}

func (p *EditorPanel) insertAfter(id int) {
	if p.session == nil {
		return
	}
	seg, _, err := p.session.InsertAfter(p.indexOf(id))
	if err != nil {
		p.report(err)
		return
	}
	p.SetSegments(p.session.Segments())
	p.ApplyFocus(editor.FocusRequest{SegmentID: seg.ID})
}

func (p *EditorPanel) remove(id int) {
	if p.session == nil {
		return
	}
	if err := p.session.Remove(id); err != nil {
		p.report(err)
		return
	}
	p.SetSegments(p.session.Segments())
}

func (p *EditorPanel) copyTranscript() {
	if p.session == nil {
		return
	}
	fyne.CurrentApp().Clipboard().SetContent(p.session.FullTranscript())
}

func (p *EditorPanel) report(err error) {
	p.log.Warn("edit rejected: %v", err)
	if p.OnError != nil {
		p.OnError(err)
	}
}

// CreateRenderer implements fyne.Widget
func (p *EditorPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}
