package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"verbum-lector/internal/datauri"
	"verbum-lector/internal/editor"
	"verbum-lector/models"
)

// fakeProvider plays all three collaborators. Unset functions succeed with
// Vietnamese and two sentences; translation echoes with a prefix.
type fakeProvider struct {
	mu         sync.Mutex
	calls      map[string]int
	detect     func(ctx context.Context, uri string) (models.LanguageDetection, error)
	transcribe func(ctx context.Context, uri string) (models.Transcript, error)
	translate  func(ctx context.Context, sentences []string, src, tgt string) ([]string, error)
}

func (f *fakeProvider) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeProvider) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeProvider) DetectLanguage(ctx context.Context, uri string) (models.LanguageDetection, error) {
	f.count("detect")
	if f.detect != nil {
		return f.detect(ctx, uri)
	}
	return models.LanguageDetection{LanguageCode: "vi", Confidence: 0.97}, nil
}

func (f *fakeProvider) TranscribeAudio(ctx context.Context, uri string) (models.Transcript, error) {
	f.count("transcribe")
	if f.transcribe != nil {
		return f.transcribe(ctx, uri)
	}
	return models.Transcript{Transcript: "Xin chào. Cảm ơn.", Sentences: []string{"Xin chào.", "Cảm ơn."}}, nil
}

func (f *fakeProvider) TranslateSentences(ctx context.Context, sentences []string, src, tgt string) ([]string, error) {
	f.count("translate")
	if f.translate != nil {
		return f.translate(ctx, sentences, src, tgt)
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = tgt + ":" + s
	}
	return out, nil
}

func testAudio(payload string) string {
	return datauri.Encode("audio/mpeg", []byte(payload))
}

func newTestSession(t *testing.T, f *fakeProvider) *Session {
	t.Helper()
	s := NewPipeline(nil, f, f, f).NewSession(context.Background())
	t.Cleanup(s.Close)
	return s
}

// submitAndWait submits audio and waits for the pipeline to settle.
func submitAndWait(t *testing.T, s *Session, audio string) {
	t.Helper()
	if _, err := s.Submit(audio, "clip.mp3"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	s.Wait()
}

func texts(segments []editor.Segment) []string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = seg.Text
	}
	return out
}

func TestSession_SubmitTranscribes(t *testing.T) {
	f := &fakeProvider{}
	s := newTestSession(t, f)

	submitAndWait(t, s, testAudio("a"))

	st := s.Status()
	if st.Stage != models.StageReady {
		t.Fatalf("stage = %s, want ready (err %q)", st.Stage, st.Error)
	}
	if st.SourceLanguage != "vi" || st.TargetLanguage != "ko" {
		t.Errorf("languages = %s → %s, want vi → ko", st.SourceLanguage, st.TargetLanguage)
	}
	if st.Detected == nil || st.Detected.Confidence != 0.97 {
		t.Errorf("detected = %+v", st.Detected)
	}
	want := []editor.Segment{{ID: 0, Text: "Xin chào."}, {ID: 1, Text: "Cảm ơn."}}
	if got := s.Segments(); !reflect.DeepEqual(got, want) {
		t.Errorf("segments = %+v, want %+v", got, want)
	}
	if got := s.FullTranscript(); got != "Xin chào.\nCảm ơn." {
		t.Errorf("FullTranscript() = %q", got)
	}
}

func TestSession_NormalizesRegionalCode(t *testing.T) {
	var gotSrc, gotTgt string
	f := &fakeProvider{
		detect: func(context.Context, string) (models.LanguageDetection, error) {
			return models.LanguageDetection{LanguageCode: "ko-KR", Confidence: 0.9}, nil
		},
		translate: func(_ context.Context, sentences []string, src, tgt string) ([]string, error) {
			gotSrc, gotTgt = src, tgt
			return sentences, nil
		},
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	if err := s.Translate(); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	s.Wait()

	if gotSrc != "ko" || gotTgt != "vi" {
		t.Errorf("translate called with %s → %s, want ko → vi", gotSrc, gotTgt)
	}
	if d := s.Status().Detected; d == nil || d.LanguageCode != "ko" {
		t.Errorf("detected = %+v, want ko", d)
	}
}

func TestSession_UnsupportedLanguage(t *testing.T) {
	f := &fakeProvider{
		detect: func(context.Context, string) (models.LanguageDetection, error) {
			return models.LanguageDetection{LanguageCode: "en", Confidence: 0.99}, nil
		},
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	st := s.Status()
	if st.Stage != models.StageError || st.Fallback != models.StageIdle {
		t.Errorf("stage = %s/%s, want error/idle", st.Stage, st.Fallback)
	}
	if !errors.Is(s.Err(), ErrUnsupportedLanguage) {
		t.Errorf("Err() = %v, want ErrUnsupportedLanguage", s.Err())
	}
	if n := f.Calls("transcribe"); n != 0 {
		t.Errorf("transcribe called %d times, want 0", n)
	}
	if err := s.Translate(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Translate() error = %v, want ErrNotReady", err)
	}
}

func TestSession_TranscriptionFailure(t *testing.T) {
	f := &fakeProvider{
		transcribe: func(context.Context, string) (models.Transcript, error) {
			return models.Transcript{}, errors.New("model overloaded")
		},
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	st := s.Status()
	if st.Stage != models.StageError || st.Fallback != models.StageIdle {
		t.Errorf("stage = %s/%s, want error/idle", st.Stage, st.Fallback)
	}
	if st.Message == "" || st.Error == "" {
		t.Errorf("status carries no error message: %+v", st)
	}
}

func TestSession_SplitsTranscriptWithoutSentences(t *testing.T) {
	f := &fakeProvider{
		transcribe: func(context.Context, string) (models.Transcript, error) {
			return models.Transcript{Transcript: "안녕하세요. 감사합니다!"}, nil
		},
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	want := []string{"안녕하세요.", "감사합니다!"}
	if got := texts(s.Segments()); !reflect.DeepEqual(got, want) {
		t.Errorf("segments = %q, want %q", got, want)
	}
}

func TestSession_InvalidAudio(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	for _, uri := range []string{"", "hello", datauri.Encode("text/plain", []byte("x"))} {
		if _, err := s.Submit(uri, "x"); !errors.Is(err, ErrInvalidAudio) {
			t.Errorf("Submit(%q) error = %v, want ErrInvalidAudio", uri, err)
		}
	}
	if st := s.Status(); st.Stage != models.StageIdle || st.Epoch != 0 {
		t.Errorf("status after rejected submits = %s epoch %d", st.Stage, st.Epoch)
	}
}

func TestSession_TranslateJoinsByID(t *testing.T) {
	release := make(chan struct{})
	f := &fakeProvider{
		transcribe: func(context.Context, string) (models.Transcript, error) {
			return models.Transcript{Sentences: []string{"A", "B"}}, nil
		},
		translate: func(ctx context.Context, sentences []string, _, _ string) ([]string, error) {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return []string{"X", "Y"}, nil
		},
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	if err := s.Translate(); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if err := s.Translate(); !errors.Is(err, ErrBusy) {
		t.Errorf("second Translate() error = %v, want ErrBusy", err)
	}

	// Edit while the request is in flight.
	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove(1) error = %v", err)
	}
	close(release)
	s.Wait()

	if st := s.Status(); st.Stage != models.StageTranslated {
		t.Fatalf("stage = %s, want translated (err %q)", st.Stage, st.Error)
	}
	want := []models.TranslationRow{{SegmentID: 0, Original: "A", Translation: "X"}}
	if got := s.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %+v, want %+v", got, want)
	}
	if got := s.FullTranslation(); got != "X" {
		t.Errorf("FullTranslation() = %q, want %q", got, "X")
	}
	if got, ok := s.Lookup(1); !ok || got != "Y" {
		t.Errorf("Lookup(1) = %q, %v; the result keeps removed ids", got, ok)
	}
}

func TestSession_NewSegmentHasNoTranslation(t *testing.T) {
	f := &fakeProvider{}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))
	if err := s.Translate(); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	seg, index, err := s.InsertAfter(0)
	if err != nil {
		t.Fatalf("InsertAfter(0) error = %v", err)
	}
	if index != 1 || seg.ID != editor.DefaultFirstID {
		t.Errorf("InsertAfter(0) = %+v at %d", seg, index)
	}
	if got := s.FullTranslation(); got != "ko:Xin chào.\n\nko:Cảm ơn." {
		t.Errorf("FullTranslation() = %q", got)
	}
}

func TestSession_LengthMismatchKeepsPreviousResult(t *testing.T) {
	short := false
	f := &fakeProvider{}
	f.translate = func(_ context.Context, sentences []string, _, _ string) ([]string, error) {
		if short {
			return []string{"only one"}, nil
		}
		return []string{"first", "second"}, nil
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	if err := s.Translate(); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	short = true
	if err := s.Translate(); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	st := s.Status()
	if st.Stage != models.StageError || st.Fallback != models.StageReady {
		t.Errorf("stage = %s/%s, want error/ready", st.Stage, st.Fallback)
	}
	if !errors.Is(s.Err(), editor.ErrLengthMismatch) {
		t.Errorf("Err() = %v, want ErrLengthMismatch", s.Err())
	}
	if got := s.FullTranslation(); got != "first\nsecond" {
		t.Errorf("FullTranslation() = %q, previous result lost", got)
	}

	// Translation may be retried from the error stage.
	short = false
	if err := s.Translate(); err != nil {
		t.Errorf("retry Translate() error = %v", err)
	}
	s.Wait()
	if st := s.Status(); st.Stage != models.StageTranslated {
		t.Errorf("stage after retry = %s", st.Stage)
	}
}

func TestSession_TranslateRejections(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	if err := s.Translate(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Translate() before submit = %v, want ErrNotReady", err)
	}

	f := &fakeProvider{
		transcribe: func(context.Context, string) (models.Transcript, error) {
			return models.Transcript{}, nil
		},
	}
	empty := newTestSession(t, f)
	submitAndWait(t, empty, testAudio("a"))
	if err := empty.Translate(); !errors.Is(err, ErrNothingToTranslate) {
		t.Errorf("Translate() on empty transcript = %v, want ErrNothingToTranslate", err)
	}
}

func TestSession_ResubmitDiscardsStaleResults(t *testing.T) {
	release := make(chan struct{})
	f := &fakeProvider{
		// The first file's transcription ignores cancellation and finishes late.
		transcribe: func(_ context.Context, uri string) (models.Transcript, error) {
			if uri == testAudio("first") {
				<-release
				return models.Transcript{Sentences: []string{"stale"}}, nil
			}
			return models.Transcript{Sentences: []string{"fresh"}}, nil
		},
	}
	s := newTestSession(t, f)

	if _, err := s.Submit(testAudio("first"), "first.mp3"); err != nil {
		t.Fatal(err)
	}
	waitForStage(t, s, models.StageTranscribing)

	epoch, err := s.Submit(testAudio("second"), "second.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if epoch != 2 {
		t.Errorf("epoch = %d, want 2", epoch)
	}
	waitForStage(t, s, models.StageReady)

	close(release)
	s.Wait()

	if got := texts(s.Segments()); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Errorf("segments = %q, stale result applied", got)
	}
	if st := s.Status(); st.FileName != "second.mp3" || st.Stage != models.StageReady {
		t.Errorf("status = %+v", st)
	}
}

func TestSession_ResubmitResetsTranslation(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	submitAndWait(t, s, testAudio("a"))
	if err := s.Translate(); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	submitAndWait(t, s, testAudio("b"))
	if got := s.FullTranslation(); got != "\n" {
		t.Errorf("FullTranslation() after resubmit = %q, want empty lines", got)
	}
	if st := s.Status(); st.Stage != models.StageReady {
		t.Errorf("stage = %s", st.Stage)
	}
}

func TestSession_SplitAtFocus(t *testing.T) {
	f := &fakeProvider{
		transcribe: func(context.Context, string) (models.Transcript, error) {
			return models.Transcript{Sentences: []string{"HelloWorld"}}, nil
		},
	}
	s := newTestSession(t, f)
	submitAndWait(t, s, testAudio("a"))

	events, cancel := s.Subscribe()
	defer cancel()

	if _, err := s.SplitAtFocus(); !errors.Is(err, ErrNoFocus) {
		t.Errorf("SplitAtFocus() without focus = %v, want ErrNoFocus", err)
	}

	s.Focus(0, 0)
	s.MoveCursor(5)
	req, err := s.SplitAtFocus()
	if err != nil {
		t.Fatalf("SplitAtFocus() error = %v", err)
	}
	want := editor.FocusRequest{SegmentID: editor.DefaultFirstID, Index: 1}
	if req != want {
		t.Errorf("SplitAtFocus() = %+v, want %+v", req, want)
	}
	if got := texts(s.Segments()); !reflect.DeepEqual(got, []string{"Hello", "World"}) {
		t.Errorf("segments = %q", got)
	}

	var sawFocus, sawSegments bool
	for len(events) > 0 {
		ev := <-events
		switch ev.Type {
		case EventFocus:
			if !sawSegments {
				t.Error("focus event arrived before the segments it names")
			}
			sawFocus = ev.Focus != nil && *ev.Focus == want
		case EventSegments:
			sawSegments = len(ev.Segments) == 2
		}
		if ev.SessionID != s.ID() {
			t.Errorf("event session id = %q, want %q", ev.SessionID, s.ID())
		}
	}
	if !sawFocus || !sawSegments {
		t.Errorf("focus event %v, segments event %v", sawFocus, sawSegments)
	}
}

func TestSession_TranscriptionClearsEarlyFocus(t *testing.T) {
	release := make(chan struct{})
	f := &fakeProvider{
		transcribe: func(context.Context, string) (models.Transcript, error) {
			<-release
			return models.Transcript{Sentences: []string{"Xin chào.", "Cảm ơn."}}, nil
		},
	}
	s := newTestSession(t, f)

	if _, err := s.Submit(testAudio("a"), "clip.mp3"); err != nil {
		t.Fatal(err)
	}
	waitForStage(t, s, models.StageTranscribing)
	s.Focus(0, 3)
	close(release)
	s.Wait()

	if st, ok := s.FocusState(); ok {
		t.Errorf("FocusState() = %+v, true; want focus cleared by the new transcript", st)
	}
	if _, err := s.SplitAtFocus(); !errors.Is(err, ErrNoFocus) {
		t.Errorf("SplitAtFocus() = %v, want ErrNoFocus", err)
	}
	if got := texts(s.Segments()); !reflect.DeepEqual(got, []string{"Xin chào.", "Cảm ơn."}) {
		t.Errorf("segments = %q", got)
	}
}

func TestSession_TranslateCancelsPreviousRun(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	submitAndWait(t, s, testAudio("a"))

	s.mu.Lock()
	previous := s.restart()
	s.mu.Unlock()

	if err := s.Translate(); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	s.Wait()
	if !errors.Is(previous.Err(), context.Canceled) {
		t.Errorf("previous run context err = %v, want context.Canceled", previous.Err())
	}
}

func TestSession_EditErrors(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})
	submitAndWait(t, s, testAudio("a"))

	if _, _, err := s.SplitAt(5, 0); !errors.Is(err, ErrNoSegment) {
		t.Errorf("SplitAt(5) = %v", err)
	}
	if _, _, err := s.InsertAfter(-2); !errors.Is(err, ErrNoSegment) {
		t.Errorf("InsertAfter(-2) = %v", err)
	}
	if err := s.Remove(99); !errors.Is(err, ErrNoSegment) {
		t.Errorf("Remove(99) = %v", err)
	}
	if err := s.Move(0, 7); !errors.Is(err, ErrNoSegment) {
		t.Errorf("Move(0, 7) = %v", err)
	}
	if err := s.UpdateText(0, "one\ntwo"); !errors.Is(err, editor.ErrLineBreak) {
		t.Errorf("UpdateText with line break = %v, want ErrLineBreak", err)
	}
	if err := s.UpdateText(99, "ignored"); !errors.Is(err, ErrNoSegment) {
		t.Errorf("UpdateText(99) = %v, want ErrNoSegment", err)
	}
	if err := s.Move(1, 0); err != nil {
		t.Errorf("Move(1, 0) = %v", err)
	}
	if got := texts(s.Segments()); !reflect.DeepEqual(got, []string{"Cảm ơn.", "Xin chào."}) {
		t.Errorf("segments after move = %q", got)
	}
}

func TestSession_ProgressCallback(t *testing.T) {
	s := newTestSession(t, &fakeProvider{})

	var mu sync.Mutex
	var stages []models.Stage
	s.SetProgressCallback(func(stage models.Stage, percent int, message string) {
		mu.Lock()
		defer mu.Unlock()
		stages = append(stages, stage)
	})
	submitAndWait(t, s, testAudio("a"))

	mu.Lock()
	defer mu.Unlock()
	want := []models.Stage{models.StageDetectingLanguage, models.StageTranscribing, models.StageReady}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}
}

func TestSession_Close(t *testing.T) {
	s := NewPipeline(nil, &fakeProvider{}, &fakeProvider{}, &fakeProvider{}).NewSession(context.Background())
	events, _ := s.Subscribe()
	s.Close()

	if _, err := s.Submit(testAudio("a"), "a.mp3"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Submit() after Close = %v, want ErrSessionClosed", err)
	}
	for range events {
	}
}

func waitForStage(t *testing.T, s *Session, stage models.Stage) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.Status().Stage == stage {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stage never reached %s (now %s)", stage, s.Status().Stage)
}
