package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidSeek is returned for seek targets outside [0, duration] or NaN.
	ErrInvalidSeek = errors.New("invalid seek target")
	// ErrSeekWhilePlaying is returned when Seek is called on a running session.
	ErrSeekWhilePlaying = errors.New("seek while playing")
)

// Session is the playback context of one editing session: current time,
// pause flag, timeline duration and the id counter for layers and runs.
//
// A Session is not safe for concurrent use. It is owned by the scheduler's
// loop and mutated only from there.
type Session struct {
	ID uuid.UUID

	currentMs  float64
	durationMs float64
	paused     bool
	nextID     uint64

	log logrus.FieldLogger
}

// NewSession creates a paused session at time 0.
func NewSession(durationMs float64, log logrus.FieldLogger) (*Session, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{
		ID:     uuid.New(),
		paused: true,
	}
	s.log = log.WithField("session", s.ID.String())
	if err := s.SetDuration(durationMs); err != nil {
		return nil, err
	}
	return s, nil
}

// Log returns the session-scoped logger.
func (s *Session) Log() logrus.FieldLogger {
	return s.log
}

// Now returns the current playback time in milliseconds.
func (s *Session) Now() float64 {
	return s.currentMs
}

// Duration returns the timeline duration in milliseconds.
func (s *Session) Duration() float64 {
	return s.durationMs
}

// SetDuration changes the timeline duration. The current time is clamped
// into the new range.
func (s *Session) SetDuration(ms float64) error {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
		return fmt.Errorf("timeline duration %v: must be positive", ms)
	}
	s.durationMs = ms
	if s.currentMs > ms {
		s.currentMs = ms
	}
	return nil
}

// Paused reports whether the pause flag is set.
func (s *Session) Paused() bool {
	return s.paused
}

// Pause sets the pause flag. A running driver observes it on its next frame.
func (s *Session) Pause() {
	s.paused = true
}

// Resume clears the pause flag.
func (s *Session) Resume() {
	s.paused = false
}

// AdvanceTo moves the clock without validation. Only the scheduler calls
// it; values are clamped into [0, duration].
func (s *Session) AdvanceTo(ms float64) {
	if math.IsNaN(ms) {
		return
	}
	s.currentMs = math.Max(0, math.Min(ms, s.durationMs))
}

// Seek sets the current time while paused. Out-of-range and NaN targets are
// rejected before any state changes.
func (s *Session) Seek(ms float64) error {
	if math.IsNaN(ms) || ms < 0 || ms > s.durationMs {
		s.log.WithFields(logrus.Fields{"target_ms": ms, "duration_ms": s.durationMs}).
			Warn("[!] seek rejected: target out of range")
		return fmt.Errorf("seek to %v: %w", ms, ErrInvalidSeek)
	}
	if !s.paused {
		s.log.WithField("target_ms", ms).Warn("[!] seek rejected: session is playing")
		return fmt.Errorf("seek to %v: %w", ms, ErrSeekWhilePlaying)
	}
	s.currentMs = ms
	return nil
}

// NextID returns the next value of the session counter. Values are strictly
// increasing and never reset.
func (s *Session) NextID() uint64 {
	s.nextID++
	return s.nextID
}

// NewID builds a layer identifier such as "AnimText12".
func (s *Session) NewID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.NextID())
}
