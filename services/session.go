package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"verbum-lector/internal/config"
	"verbum-lector/internal/datauri"
	"verbum-lector/internal/editor"
	"verbum-lector/internal/limiter"
	"verbum-lector/internal/logger"
	"verbum-lector/internal/text"
	"verbum-lector/models"
)

var (
	// ErrUnsupportedLanguage means the audio is neither Vietnamese nor Korean.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrBusy is returned when a translation is already running.
	ErrBusy = errors.New("a translation is already in progress")
	// ErrNotReady is returned when there is no transcript to translate yet.
	ErrNotReady = errors.New("no transcript is ready")
	// ErrNothingToTranslate is returned for a transcript with no segments.
	ErrNothingToTranslate = errors.New("transcript has no segments to translate")
	// ErrInvalidAudio wraps data URI validation failures.
	ErrInvalidAudio = errors.New("invalid audio")
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")
)

// Session is one transcript being edited and translated. All methods are safe
// for concurrent use. The lock is never held across a call to a collaborator;
// results of a call are applied only if no newer submission happened while
// it was running.
type Session struct {
	id       string
	pipeline *Pipeline
	log      *logger.Logger
	events   *hub

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	mu       sync.Mutex
	store    *editor.Store
	focus    *editor.FocusTracker
	join     *editor.TranslationJoin
	stage    models.Stage
	fallback models.Stage
	err      error
	detected *models.LanguageDetection
	source   string
	target   string
	fileName string
	epoch    uint64
	cancel   context.CancelFunc
	updated  time.Time
	pending  []Event

	onProgress ProgressCallback
}

func newSession(ctx context.Context, p *Pipeline, opts editor.StoreOptions) *Session {
	id := models.NewSessionID()
	log := logger.With("session").With("session_id", id)
	ctx, stop := context.WithCancel(ctx)

	store := editor.NewStore(opts)
	s := &Session{
		id:       id,
		pipeline: p,
		log:      log,
		events:   newHub(log),
		ctx:      ctx,
		stop:     stop,
		store:    store,
		focus:    editor.NewFocusTracker(store),
		join:     editor.NewTranslationJoin(),
		stage:    models.StageIdle,
		updated:  time.Now(),
	}
	s.focus.OnFocusRequest(func(req editor.FocusRequest) {
		s.emit(Event{Type: EventFocus, Focus: &req})
	})
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// SetProgressCallback registers cb for stage changes.
func (s *Session) SetProgressCallback(cb ProgressCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = cb
}

// Subscribe returns a channel of session events and a function that ends the
// subscription.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// update runs fn under the lock and publishes whatever it emitted once the
// lock is released.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	events := s.pending
	s.pending = nil
	cb := s.onProgress
	s.mu.Unlock()

	for i := range events {
		events[i].SessionID = s.id
		if cb != nil && events[i].Type == EventStage && events[i].Status != nil {
			st := events[i].Status
			cb(st.Stage, st.Progress, st.StatusText())
		}
	}
	s.events.publish(events...)
}

// emit queues an event; callers hold the lock.
func (s *Session) emit(ev Event) {
	s.pending = append(s.pending, ev)
}

func (s *Session) setStage(stage models.Stage) {
	s.stage = stage
	s.updated = time.Now()
	if stage != models.StageError {
		s.err = nil
		s.fallback = ""
	}
	st := s.statusLocked()
	s.emit(Event{Type: EventStage, Status: &st})
}

func (s *Session) fail(err error, fallback models.Stage) {
	s.err = err
	s.stage = models.StageError
	s.fallback = fallback
	s.updated = time.Now()
	s.log.Error("%v", err)
	st := s.statusLocked()
	s.emit(Event{Type: EventError, Error: err.Error(), Status: &st})
	s.emit(Event{Type: EventStage, Status: &st})
}

// restart cancels the context of the previous run and returns a fresh one.
// Callers hold the lock.
func (s *Session) restart() context.Context {
	if s.cancel != nil {
		s.cancel()
	}
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(s.ctx)
	return ctx
}

func (s *Session) emitSegments() {
	s.emit(Event{Type: EventSegments, Segments: s.store.Segments()})
}

// Submit validates audioDataURI and starts detection and transcription in
// the background. Any work in flight is cancelled and its results will be
// ignored. It returns the new epoch.
func (s *Session) Submit(audioDataURI, fileName string) (uint64, error) {
	if _, err := datauri.ValidateMedia(audioDataURI); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	var (
		epoch uint64
		ctx   context.Context
		err   error
	)
	s.update(func() {
		if s.closed {
			err = ErrSessionClosed
			return
		}
		s.epoch++
		epoch = s.epoch
		ctx = s.restart()

		s.store.Replace(nil)
		s.focus.Clear()
		s.join.Reset()
		s.detected = nil
		s.source, s.target = "", ""
		s.fileName = fileName
		s.emitSegments()
		s.setStage(models.StageDetectingLanguage)
		s.wg.Add(1)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("processing %q (epoch %d)", fileName, epoch)
	go func() {
		defer s.wg.Done()
		s.process(ctx, epoch, audioDataURI)
	}()
	return epoch, nil
}

// current reports whether epoch is still the latest submission; callers hold
// the lock.
func (s *Session) current(epoch uint64) bool {
	if s.epoch != epoch {
		s.log.Debug("discarding result of epoch %d (now %d)", epoch, s.epoch)
		return false
	}
	return true
}

func (s *Session) process(ctx context.Context, epoch uint64, audioDataURI string) {
	p := s.pipeline

	detectCtx, cancel := context.WithTimeout(ctx, config.DetectTimeout)
	detection, err := limiter.Do(detectCtx, p.calls, func(ctx context.Context) (models.LanguageDetection, error) {
		return p.detector.DetectLanguage(ctx, audioDataURI)
	})
	cancel()

	proceed := false
	s.update(func() {
		if !s.current(epoch) {
			return
		}
		if err != nil {
			s.fail(fmt.Errorf("language detection failed: %w", err), models.StageIdle)
			return
		}
		code := text.NormalizeLanguageCode(detection.LanguageCode)
		detection.LanguageCode = code
		s.detected = &detection
		if !text.IsSupported(code) {
			s.fail(fmt.Errorf("%w: detected %q, expected Vietnamese or Korean", ErrUnsupportedLanguage, code), models.StageIdle)
			return
		}
		s.source = code
		s.target = text.OtherLanguage(code)
		s.setStage(models.StageTranscribing)
		proceed = true
	})
	if !proceed {
		return
	}

	transcribeCtx, cancel := context.WithTimeout(ctx, config.TranscribeTimeout)
	transcript, err := limiter.Do(transcribeCtx, p.calls, func(ctx context.Context) (models.Transcript, error) {
		return p.transcriber.TranscribeAudio(ctx, audioDataURI)
	})
	cancel()

	s.update(func() {
		if !s.current(epoch) {
			return
		}
		if err != nil {
			s.fail(fmt.Errorf("transcription failed: %w", err), models.StageIdle)
			return
		}
		sentences := transcript.Sentences
		if !transcript.HasSentences() {
			sentences = text.SplitSentences(transcript.Transcript)
		}
		s.store.Replace(sentences)
		s.focus.Clear()
		s.emitSegments()
		s.setStage(models.StageReady)
	})
}

// Translate snapshots the segments and starts translating them in the
// background.
func (s *Session) Translate() error {
	var (
		ctx      context.Context
		epoch    uint64
		snapshot editor.Snapshot
		src, tgt string
		err      error
	)
	s.update(func() {
		if err = s.canTranslate(); err != nil {
			return
		}
		snapshot = s.join.RequestTranslation(s.store.Segments())
		epoch = s.epoch
		src, tgt = s.source, s.target
		ctx = s.restart()
		s.setStage(models.StageTranslating)
		s.wg.Add(1)
	})
	if err != nil {
		return err
	}

	s.log.Info("translating %d segments %s → %s", snapshot.Len(), src, tgt)
	go func() {
		defer s.wg.Done()
		s.translate(ctx, epoch, snapshot, src, tgt)
	}()
	return nil
}

func (s *Session) canTranslate() error {
	if s.closed {
		return ErrSessionClosed
	}
	switch s.stage {
	case models.StageTranslating:
		return ErrBusy
	case models.StageReady, models.StageTranslated:
	case models.StageError:
		if s.fallback != models.StageReady {
			return ErrNotReady
		}
	default:
		return ErrNotReady
	}
	if s.store.Len() == 0 {
		return ErrNothingToTranslate
	}
	return nil
}

func (s *Session) translate(ctx context.Context, epoch uint64, snapshot editor.Snapshot, src, tgt string) {
	translateCtx, cancel := context.WithTimeout(ctx, config.TranslateTimeout)
	translated, err := limiter.Do(translateCtx, s.pipeline.calls, func(ctx context.Context) ([]string, error) {
		return s.pipeline.translator.TranslateSentences(ctx, snapshot.Texts(), src, tgt)
	})
	cancel()

	s.update(func() {
		if !s.current(epoch) {
			return
		}
		if err != nil {
			s.join.CancelPending()
			s.fail(fmt.Errorf("translation failed: %w", err), models.StageReady)
			return
		}
		if err := s.join.OnTranslationComplete(translated); err != nil {
			s.fail(fmt.Errorf("translation failed: %w", err), models.StageReady)
			return
		}
		s.emit(Event{Type: EventTranslation, Rows: s.rowsLocked()})
		s.setStage(models.StageTranslated)
	})
}

// Wait blocks until background work started so far has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels background work, waits for it and ends all subscriptions.
func (s *Session) Close() {
	s.update(func() {
		s.closed = true
	})
	s.stop()
	s.wg.Wait()
	s.events.close()
}

// Err returns the error that put the session in the error stage, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Status returns a snapshot of the pipeline state.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() models.SessionStatus {
	st := models.SessionStatus{
		SessionID:      s.id,
		Stage:          s.stage,
		Fallback:       s.fallback,
		Progress:       stageProgress(s.stage, s.fallback),
		SourceLanguage: s.source,
		TargetLanguage: s.target,
		FileName:       s.fileName,
		Epoch:          s.epoch,
		SegmentCount:   s.store.Len(),
		UpdatedAt:      s.updated,
	}
	if s.detected != nil {
		d := *s.detected
		st.Detected = &d
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	st.Message = st.StatusText()
	return st
}

func stageProgress(stage, fallback models.Stage) int {
	switch stage {
	case models.StageDetectingLanguage:
		return config.ProgressDetectStart
	case models.StageTranscribing:
		return config.ProgressTranscribeStart
	case models.StageReady:
		return config.ProgressTranscribeEnd
	case models.StageTranslating:
		return config.ProgressTranslateStart
	case models.StageTranslated:
		return config.ProgressTranslateEnd
	case models.StageError:
		if fallback == models.StageReady {
			return config.ProgressTranscribeEnd
		}
	}
	return 0
}
