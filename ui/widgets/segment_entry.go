package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SegmentEntry is a single-line entry for one transcript segment. It reports
// focus and cursor movement, and Enter splits the segment at the cursor.
type SegmentEntry struct {
	widget.Entry

	SegmentID int

	OnFocus  func(e *SegmentEntry)
	OnCursor func(e *SegmentEntry)
	OnBlur   func(e *SegmentEntry)
	OnSplit  func(e *SegmentEntry)
}

// NewSegmentEntry creates an entry holding text.
func NewSegmentEntry(id int, text string) *SegmentEntry {
	e := &SegmentEntry{SegmentID: id}
	e.ExtendBaseWidget(e)
	e.Wrapping = fyne.TextWrapOff
	e.SetText(text)
	e.OnCursorChanged = func() {
		if e.OnCursor != nil {
			e.OnCursor(e)
		}
	}
	e.OnSubmitted = func(string) {
		if e.OnSplit != nil {
			e.OnSplit(e)
		}
	}
	return e
}

// CursorOffset is the cursor position in runes.
func (e *SegmentEntry) CursorOffset() int {
	return e.CursorColumn
}

// SetCursorOffset moves the cursor, clamped to the text.
func (e *SegmentEntry) SetCursorOffset(offset int) {
	e.CursorRow = 0
	e.CursorColumn = max(0, min(offset, len([]rune(e.Text))))
	e.Refresh()
}

// FocusGained implements fyne.Focusable
func (e *SegmentEntry) FocusGained() {
	e.Entry.FocusGained()
	if e.OnFocus != nil {
		e.OnFocus(e)
	}
}

// FocusLost implements fyne.Focusable
func (e *SegmentEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.OnBlur != nil {
		e.OnBlur(e)
	}
}
