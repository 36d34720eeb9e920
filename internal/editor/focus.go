package editor

// FocusState is the segment position and cursor offset currently being edited.
type FocusState struct {
	Index        int `json:"index"`
	CursorOffset int `json:"cursorOffset"`
}

// FocusRequest asks whoever renders the editor to move focus to a segment.
type FocusRequest struct {
	SegmentID    int `json:"segmentId"`
	Index        int `json:"index"`
	CursorOffset int `json:"cursorOffset"`
}

// FocusTracker remembers where the user is editing so cursor-relative edits
// need no positional arguments.
type FocusTracker struct {
	store     *Store
	state     FocusState
	focused   bool
	listeners []func(FocusRequest)
}

// NewFocusTracker creates a tracker over store with no focus.
func NewFocusTracker(store *Store) *FocusTracker {
	return &FocusTracker{store: store}
}

// OnFocusRequest registers fn to receive focus requests.
func (f *FocusTracker) OnFocusRequest(fn func(FocusRequest)) {
	if fn != nil {
		f.listeners = append(f.listeners, fn)
	}
}

// Focus records that the segment at index gained focus with the cursor at offset.
func (f *FocusTracker) Focus(index, offset int) {
	f.state = FocusState{Index: index, CursorOffset: offset}
	f.focused = true
}

// MoveCursor updates the cursor offset of the focused segment.
func (f *FocusTracker) MoveCursor(offset int) {
	if !f.focused {
		return
	}
	f.state.CursorOffset = offset
}

// Blur records the final cursor offset when focus leaves the segment. The
// state is kept so that a toolbar action can still act on it.
func (f *FocusTracker) Blur(offset int) {
	if !f.focused {
		return
	}
	f.state.CursorOffset = offset
}

// State returns the last recorded focus; ok is false when nothing was focused.
// The index may be stale after removals.
func (f *FocusTracker) State() (FocusState, bool) {
	return f.state, f.focused
}

// Clear forgets the focus.
func (f *FocusTracker) Clear() {
	f.state = FocusState{}
	f.focused = false
}

// SplitAtFocus splits the focused segment at the cursor and requests focus on
// the new segment with the cursor at its start.
func (f *FocusTracker) SplitAtFocus() (FocusRequest, bool) {
	if !f.valid() {
		return FocusRequest{}, false
	}
	id, index, ok := f.store.SplitAt(f.state.Index, f.state.CursorOffset)
	if !ok {
		return FocusRequest{}, false
	}
	return f.moveTo(id, index), true
}

// InsertAfterFocused inserts an empty segment after the focused one,
// ignoring the cursor offset.
func (f *FocusTracker) InsertAfterFocused() (FocusRequest, bool) {
	if !f.valid() {
		return FocusRequest{}, false
	}
	id, index, ok := f.store.InsertAfter(f.state.Index)
	if !ok {
		return FocusRequest{}, false
	}
	return f.moveTo(id, index), true
}

func (f *FocusTracker) valid() bool {
	return f.focused && f.state.Index >= 0 && f.state.Index < f.store.Len()
}

func (f *FocusTracker) moveTo(id, index int) FocusRequest {
	req := FocusRequest{SegmentID: id, Index: index}
	// Follow the request so repeated splits keep walking down the transcript
	// even when no renderer reports focus back.
	f.state = FocusState{Index: index}
	for _, fn := range f.listeners {
		fn(req)
	}
	return req
}
