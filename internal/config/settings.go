package config

import (
	"sync"
	"time"
)

// Settings is the live configuration cell shared between the settings
// surface (UI hotkeys, tray) and the sync engine. Reads and writes may race
// from different goroutines; each value is a single scalar so last-write-wins
// is fine. Writes post a coalesced change notification that the engine uses
// to recompute the active line without waiting for the next playback event.
type Settings struct {
	mu      sync.RWMutex
	offset  time.Duration
	before  int
	after   int
	changed chan struct{}
}

func NewSettings(cfg *Config) *Settings {
	s := &Settings{changed: make(chan struct{}, 1)}
	if cfg != nil {
		s.offset = cfg.Offset()
		s.before = cfg.ContextBefore
		s.after = cfg.ContextAfter
	}
	return s
}

// Changed delivers at most one pending notification; consecutive writes
// between reads coalesce.
func (s *Settings) Changed() <-chan struct{} {
	return s.changed
}

func (s *Settings) Offset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

func (s *Settings) SetOffset(offset time.Duration) {
	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
	s.notify()
}

// AdjustOffset shifts the offset by delta and returns the new value.
func (s *Settings) AdjustOffset(delta time.Duration) time.Duration {
	s.mu.Lock()
	s.offset += delta
	offset := s.offset
	s.mu.Unlock()
	s.notify()
	return offset
}

func (s *Settings) ContextLines() (before, after int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.before, s.after
}

func (s *Settings) SetContextLines(before, after int) {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	s.mu.Lock()
	s.before = before
	s.after = after
	s.mu.Unlock()
	s.notify()
}

func (s *Settings) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
