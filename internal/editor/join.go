package editor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPendingTranslation is returned when a result arrives with no request.
	ErrNoPendingTranslation = errors.New("no translation request pending")
	// ErrLengthMismatch means the translator broke the same-length contract.
	ErrLengthMismatch = errors.New("translation count does not match request")
)

// Snapshot is the ordered list of segments sent for translation. Results are
// aligned to it by position.
type Snapshot struct {
	Entries []Segment `json:"entries"`
}

// Texts returns the snapshot texts in order.
func (s Snapshot) Texts() []string {
	texts := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		texts[i] = e.Text
	}
	return texts
}

// Len returns the number of entries.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// TranslationJoin maps translated text onto segments by id, so edits made
// after a request was issued do not misalign the result.
type TranslationJoin struct {
	pending *Snapshot
	result  []Segment
	byID    map[int]string
}

// NewTranslationJoin returns an empty join.
func NewTranslationJoin() *TranslationJoin {
	return &TranslationJoin{byID: make(map[int]string)}
}

// RequestTranslation snapshots segments as the alignment key for the next result.
func (j *TranslationJoin) RequestTranslation(segments []Segment) Snapshot {
	entries := make([]Segment, len(segments))
	copy(entries, segments)
	snap := Snapshot{Entries: entries}
	j.pending = &snap
	return snap
}

// Pending returns the outstanding snapshot, if any.
func (j *TranslationJoin) Pending() (Snapshot, bool) {
	if j.pending == nil {
		return Snapshot{}, false
	}
	return *j.pending, true
}

// CancelPending drops the outstanding snapshot.
func (j *TranslationJoin) CancelPending() {
	j.pending = nil
}

// OnTranslationComplete zips the pending snapshot ids with translated. On a
// length mismatch the previous result is kept and ErrLengthMismatch returned.
func (j *TranslationJoin) OnTranslationComplete(translated []string) error {
	if j.pending == nil {
		return ErrNoPendingTranslation
	}
	snap := *j.pending
	j.pending = nil

	if len(translated) != snap.Len() {
		return fmt.Errorf("%w: sent %d, got %d", ErrLengthMismatch, snap.Len(), len(translated))
	}

	result := make([]Segment, snap.Len())
	byID := make(map[int]string, snap.Len())
	for i, e := range snap.Entries {
		result[i] = Segment{ID: e.ID, Text: translated[i]}
		byID[e.ID] = translated[i]
	}
	j.result = result
	j.byID = byID
	return nil
}

// Lookup returns the translation for id from the most recent result.
func (j *TranslationJoin) Lookup(id int) (string, bool) {
	text, ok := j.byID[id]
	return text, ok
}

// HasResult reports whether a translation has completed.
func (j *TranslationJoin) HasResult() bool {
	return j.result != nil
}

// Result returns a copy of the most recent translation result. Entries may
// refer to segments that no longer exist.
func (j *TranslationJoin) Result() []Segment {
	if j.result == nil {
		return nil
	}
	out := make([]Segment, len(j.result))
	copy(out, j.result)
	return out
}

// Render returns the translation of each segment in order, empty where none exists.
func (j *TranslationJoin) Render(segments []Segment) []string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = j.byID[seg.ID]
	}
	return out
}

// Reset forgets the pending request and the result.
func (j *TranslationJoin) Reset() {
	j.pending = nil
	j.result = nil
	j.byID = make(map[int]string)
}

// JoinLines joins texts the way the full transcript and translation views
// present them.
func JoinLines(texts []string) string {
	return strings.Join(texts, "\n")
}
