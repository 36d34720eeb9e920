package services

import (
	"errors"
	"slices"

	"verbum-lector/internal/editor"
	"verbum-lector/models"
)

var (
	// ErrNoSegment is returned when a position or id does not name a segment.
	ErrNoSegment = errors.New("no such segment")
	// ErrNoFocus is returned by cursor-relative edits when nothing is focused.
	ErrNoFocus = errors.New("no segment is focused")
)

// InsertAfter inserts an empty segment after position (-1 for the start).
func (s *Session) InsertAfter(position int) (editor.Segment, int, error) {
	var (
		seg   editor.Segment
		index int
		err   error
	)
	s.update(func() {
		id, i, ok := s.store.InsertAfter(position)
		if !ok {
			err = ErrNoSegment
			return
		}
		seg, index = editor.Segment{ID: id}, i
		s.emitSegments()
	})
	return seg, index, err
}

// SplitAt splits the segment at position after offset runes and returns the
// new suffix segment.
func (s *Session) SplitAt(position, offset int) (editor.Segment, int, error) {
	var (
		seg   editor.Segment
		index int
		err   error
	)
	s.update(func() {
		_, i, ok := s.store.SplitAt(position, offset)
		if !ok {
			err = ErrNoSegment
			return
		}
		seg, _ = s.store.At(i)
		index = i
		s.emitSegments()
	})
	return seg, index, err
}

// Remove deletes the segment with the given id.
func (s *Session) Remove(id int) error {
	var err error
	s.update(func() {
		if !s.store.Remove(id) {
			err = ErrNoSegment
			return
		}
		s.emitSegments()
	})
	return err
}

// UpdateText replaces the text of segment id.
func (s *Session) UpdateText(id int, text string) error {
	var err error
	s.update(func() {
		if s.store.IndexOf(id) < 0 {
			err = ErrNoSegment
			return
		}
		before := s.store.Len()
		if err = s.store.UpdateText(id, text); err != nil {
			return
		}
		// A split policy may have added segments.
		if s.store.Len() != before {
			s.emitSegments()
		}
	})
	return err
}

// Move relocates segment id to index.
func (s *Session) Move(id, index int) error {
	var err error
	s.update(func() {
		if !s.store.Move(id, index) {
			err = ErrNoSegment
			return
		}
		s.emitSegments()
	})
	return err
}

// Focus records that the segment at index gained focus.
func (s *Session) Focus(index, offset int) {
	s.update(func() { s.focus.Focus(index, offset) })
}

// MoveCursor updates the cursor offset of the focused segment.
func (s *Session) MoveCursor(offset int) {
	s.update(func() { s.focus.MoveCursor(offset) })
}

// Blur records the cursor offset at the moment focus was lost.
func (s *Session) Blur(offset int) {
	s.update(func() { s.focus.Blur(offset) })
}

// FocusState returns the recorded focus.
func (s *Session) FocusState() (editor.FocusState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus.State()
}

// SplitAtFocus splits the focused segment at the cursor. Subscribers receive a
// focus event for the new segment.
func (s *Session) SplitAtFocus() (editor.FocusRequest, error) {
	return s.focusEdit(s.focus.SplitAtFocus)
}

// InsertAfterFocused inserts an empty segment after the focused one.
func (s *Session) InsertAfterFocused() (editor.FocusRequest, error) {
	return s.focusEdit(s.focus.InsertAfterFocused)
}

func (s *Session) focusEdit(fn func() (editor.FocusRequest, bool)) (editor.FocusRequest, error) {
	var (
		req editor.FocusRequest
		err error
	)
	s.update(func() {
		queued := len(s.pending)
		var ok bool
		if req, ok = fn(); !ok {
			err = ErrNoFocus
			return
		}
		// The focus request names a segment subscribers have not seen yet, so
		// it goes out after the segment list.
		focus := slices.Clone(s.pending[queued:])
		s.pending = s.pending[:queued]
		s.emitSegments()
		s.pending = append(s.pending, focus...)
	})
	return req, err
}

// Segments returns a copy of the current segments.
func (s *Session) Segments() []editor.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Segments()
}

// FullTranscript returns the segment texts joined by newlines.
func (s *Session) FullTranscript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return editor.JoinLines(s.store.Texts())
}

// FullTranslation returns the translation of every current segment joined by
// newlines, with empty lines where none exists.
func (s *Session) FullTranslation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return editor.JoinLines(s.join.Render(s.store.Segments()))
}

// Lookup returns the latest translation for segment id.
func (s *Session) Lookup(id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.join.Lookup(id)
}

// Rows pairs every current segment with its translation.
func (s *Session) Rows() []models.TranslationRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowsLocked()
}

func (s *Session) rowsLocked() []models.TranslationRow {
	segments := s.store.Segments()
	translations := s.join.Render(segments)
	rows := make([]models.TranslationRow, len(segments))
	for i, seg := range segments {
		rows[i] = models.TranslationRow{
			SegmentID:   seg.ID,
			Original:    seg.Text,
			Translation: translations[i],
		}
	}
	return rows
}
