package session

import (
	"fmt"

	"github.com/milk9111/physlayout/physics"
	"go.uber.org/zap"
)

// Frame advances the world one step and writes every body's transform to its
// element, in binding order. A paused session does nothing.
func (s *Session) Frame() (err error) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	if s.closed {
		return fmt.Errorf("session: frame: %w", ErrClosed)
	}
	if s.paused.Load() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStep, r)
		}
	}()

	if err := s.engine.Step(); err != nil {
		return fmt.Errorf("session: step: %w", err)
	}
	if n := s.engine.Recovered(); n > s.recovered {
		s.log.Warn("bodies recovered from non-finite state",
			zap.Uint64("count", n-s.recovered),
			zap.Uint64("total", n),
		)
		s.recovered = n
	}

	s.buf, err = s.engine.Transforms(s.buf[:0])
	if err != nil {
		return fmt.Errorf("session: transforms: %w", err)
	}
	if len(s.buf) != len(s.elements) {
		return fmt.Errorf("session: %d bodies for %d elements: %w", len(s.buf), len(s.elements), ErrBindingMismatch)
	}
	for i, el := range s.elements {
		el.SetTransform(s.buf[i])
	}
	s.frames.Add(1)
	return nil
}

// Transforms returns the current transforms without stepping.
func (s *Session) Transforms() ([]physics.Transform, error) {
	out, err := s.engine.Transforms(nil)
	if err != nil {
		return nil, fmt.Errorf("session: transforms: %w", err)
	}
	return out, nil
}
