// package cache holds lyric acquisition results for the lifetime of the
// process. Nothing is persisted: a track is looked up against the backend at
// most once per run, including tracks that turned out to have no lyrics.
package cache

import (
	"sync"

	"github.com/lyricbird/lyricbird/internal/timeline"
	"github.com/lyricbird/lyricbird/internal/track"
)

// Entry is a remembered acquisition outcome. Timeline is nil for a cached
// negative result.
type Entry struct {
	Timeline *timeline.Timeline
	NotFound bool
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

func (s *Store) Get(id *track.Identity) (Entry, bool) {
	key := id.Key()
	if key == "" {
		return Entry{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

func (s *Store) Set(id *track.Identity, entry Entry) {
	key := id.Key()
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
}

// Delete forgets a track's result so an explicit user retry hits the backend
// again.
func (s *Store) Delete(id *track.Identity) {
	key := id.Key()
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
