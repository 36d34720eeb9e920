// Package limiter caps how many provider calls run at once across sessions.
package limiter

import "context"

// Slots is a counting semaphore. A nil *Slots never blocks.
type Slots struct {
	ch chan struct{}
}

// New returns n slots. n <= 0 means unlimited.
func New(n int) *Slots {
	if n <= 0 {
		return nil
	}
	return &Slots{ch: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx ends.
func (s *Slots) Acquire(ctx context.Context) error {
	if s == nil {
		return ctx.Err()
	}
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (s *Slots) Release() {
	if s != nil {
		<-s.ch
	}
}

// InUse reports how many slots are taken.
func (s *Slots) InUse() int {
	if s == nil {
		return 0
	}
	return len(s.ch)
}

// Do runs fn while holding a slot.
func Do[T any](ctx context.Context, s *Slots, fn func(context.Context) (T, error)) (T, error) {
	if err := s.Acquire(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer s.Release()
	return fn(ctx)
}
