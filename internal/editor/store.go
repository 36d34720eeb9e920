// Package editor provides the sentence-segmented transcript editor: an ordered
// store of segments with stable ids, a focus tracker for cursor-relative edits,
// and a join that maps translations back onto segments by id.
//
// None of the types in this package are safe for concurrent use. Callers that
// share a Store between goroutines must serialise access themselves.
package editor

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultFirstID is where freshly allocated ids start. Bulk loads number their
// segments from zero, so anything created afterwards sits well above them.
const DefaultFirstID = 1000

// ErrLineBreak is returned by UpdateText when the store rejects multi-line text.
var ErrLineBreak = errors.New("segment text must not contain line breaks")

// Segment is one editable sentence of the transcript.
type Segment struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// LineBreakPolicy decides what UpdateText does with embedded line breaks.
type LineBreakPolicy int

const (
	// LineBreaksReject refuses text containing \n or \r.
	LineBreaksReject LineBreakPolicy = iota
	// LineBreaksAccept stores the text unchanged.
	LineBreaksAccept
	// LineBreaksSplit turns every line into its own segment.
	LineBreaksSplit
)

// String returns the config name of the policy.
func (p LineBreakPolicy) String() string {
	switch p {
	case LineBreaksReject:
		return "reject"
	case LineBreaksAccept:
		return "accept"
	case LineBreaksSplit:
		return "split"
	default:
		return "unknown"
	}
}

// ParseLineBreakPolicy maps a config value to a policy. Unknown values fall
// back to LineBreaksReject.
func ParseLineBreakPolicy(s string) LineBreakPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return LineBreaksAccept
	case "split":
		return LineBreaksSplit
	default:
		return LineBreaksReject
	}
}

// Counter allocates segment ids. It only ever moves forward.
type Counter struct {
	next int
}

// NewCounter returns a counter whose first id is start.
func NewCounter(start int) *Counter {
	return &Counter{next: start}
}

// Next returns a fresh id.
func (c *Counter) Next() int {
	id := c.next
	c.next++
	return id
}

// Observe makes sure id will never be handed out.
func (c *Counter) Observe(id int) {
	if id >= c.next {
		c.next = id + 1
	}
}

// Peek returns the id the next call to Next will return.
func (c *Counter) Peek() int {
	return c.next
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// FirstID is the first id handed out by InsertAfter and SplitAt.
	// Zero means DefaultFirstID.
	FirstID int
	// LineBreaks controls UpdateText.
	LineBreaks LineBreakPolicy
}

// Store is the ordered collection of transcript segments.
type Store struct {
	segments []Segment
	ids      *Counter
	policy   LineBreakPolicy
}

// NewStore creates an empty store.
func NewStore(opts StoreOptions) *Store {
	first := opts.FirstID
	if first <= 0 {
		first = DefaultFirstID
	}
	return &Store{
		segments: make([]Segment, 0),
		ids:      NewCounter(first),
		policy:   opts.LineBreaks,
	}
}

// LineBreakPolicy returns the policy UpdateText applies.
func (s *Store) LineBreakPolicy() LineBreakPolicy {
	return s.policy
}

// Len returns the number of segments.
func (s *Store) Len() int {
	return len(s.segments)
}

// Segments returns a copy of the segments in reading order.
func (s *Store) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// At returns the segment at index.
func (s *Store) At(index int) (Segment, bool) {
	if index < 0 || index >= len(s.segments) {
		return Segment{}, false
	}
	return s.segments[index], true
}

// IndexOf returns the position of the segment with the given id, or -1.
func (s *Store) IndexOf(id int) int {
	for i, seg := range s.segments {
		if seg.ID == id {
			return i
		}
	}
	return -1
}

// Texts returns the segment texts in reading order.
func (s *Store) Texts() []string {
	texts := make([]string, len(s.segments))
	for i, seg := range s.segments {
		texts[i] = seg.Text
	}
	return texts
}

// IDs returns the segment ids in reading order.
func (s *Store) IDs() []int {
	ids := make([]int, len(s.segments))
	for i, seg := range s.segments {
		ids[i] = seg.ID
	}
	return ids
}

// Replace discards every segment and loads texts with ids 0..N-1.
func (s *Store) Replace(texts []string) {
	segments := make([]Segment, len(texts))
	for i, text := range texts {
		segments[i] = Segment{ID: i, Text: text}
		s.ids.Observe(i)
	}
	s.segments = segments
}

// InsertAfter inserts an empty segment after position, or at the start when
// position is -1. It returns the new id and index; ok is false when position
// is outside [-1, Len()-1] and nothing changed.
func (s *Store) InsertAfter(position int) (id, index int, ok bool) {
	if position < -1 || position > len(s.segments)-1 {
		return 0, 0, false
	}
	seg := Segment{ID: s.ids.Next()}
	index = position + 1
	s.insertAt(index, seg)
	return seg.ID, index, true
}

// SplitAt splits the segment at position after offset runes. The prefix keeps
// the original id; the suffix becomes a new segment right after it. offset is
// clamped to the text length. ok is false for an invalid position.
func (s *Store) SplitAt(position, offset int) (id, index int, ok bool) {
	if position < 0 || position >= len(s.segments) {
		return 0, 0, false
	}
	prefix, suffix := splitRunes(s.segments[position].Text, offset)

	// Build the new segment before touching the slice so the store never
	// holds the prefix without its suffix.
	seg := Segment{ID: s.ids.Next(), Text: suffix}
	s.segments[position].Text = prefix
	index = position + 1
	s.insertAt(index, seg)
	return seg.ID, index, true
}

// Remove deletes the segment with the given id. It reports whether anything
// was removed.
func (s *Store) Remove(id int) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.segments = append(s.segments[:i], s.segments[i+1:]...)
	return true
}

// UpdateText replaces the text of the segment with the given id. An unknown
// id is a no-op. Line breaks are handled according to the store's policy.
func (s *Store) UpdateText(id int, text string) error {
	i := s.IndexOf(id)
	if i < 0 {
		return nil
	}
	if !strings.ContainsAny(text, "\r\n") {
		s.segments[i].Text = text
		return nil
	}

	switch s.policy {
	case LineBreaksAccept:
		s.segments[i].Text = text
	case LineBreaksSplit:
		lines := splitLines(text)
		s.segments[i].Text = lines[0]
		for j, line := range lines[1:] {
			s.insertAt(i+1+j, Segment{ID: s.ids.Next(), Text: line})
		}
	default:
		return ErrLineBreak
	}
	return nil
}

// Move relocates the segment with the given id to index. ok is false when the
// id is unknown or index is out of range.
func (s *Store) Move(id, index int) bool {
	from := s.IndexOf(id)
	if from < 0 || index < 0 || index >= len(s.segments) {
		return false
	}
	if from == index {
		return true
	}
	seg := s.segments[from]
	s.segments = append(s.segments[:from], s.segments[from+1:]...)
	s.insertAt(index, seg)
	return true
}

// NextID returns the id the store will allocate next.
func (s *Store) NextID() int {
	return s.ids.Peek()
}

func (s *Store) insertAt(index int, seg Segment) {
	s.segments = append(s.segments, Segment{})
	copy(s.segments[index+1:], s.segments[index:])
	s.segments[index] = seg
}

// splitRunes cuts text after offset code points, clamping offset.
func splitRunes(text string, offset int) (string, string) {
	if offset <= 0 {
		return "", text
	}
	if offset >= utf8.RuneCountInString(text) {
		return text, ""
	}
	n := 0
	for i := range text {
		if n == offset {
			return text[:i], text[i:]
		}
		n++
	}
	return text, ""
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
