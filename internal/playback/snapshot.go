package playback

import (
	"time"

	"github.com/lyricbird/lyricbird/internal/track"
)

// PositionResolution is the granularity used when deciding whether two
// snapshots report the same position. Finer differences are player jitter,
// not information the sync engine can act on.
const PositionResolution = 100 * time.Millisecond

// Snapshot is one normalized observation of the player: what is playing,
// where, and when we looked. Track == nil is the distinguished "no session"
// snapshot; an idle desktop is a steady state, not an error. Snapshots are
// immutable once created.
type Snapshot struct {
	Track      *track.Identity
	Position   time.Duration
	Playing    bool
	ObservedAt time.Time
}

func (s Snapshot) NoSession() bool {
	return s.Track == nil
}

// Equivalent reports whether two snapshots carry the same information at the
// adapter resolution. Equivalent snapshots are suppressed to avoid redundant
// downstream work.
func (s Snapshot) Equivalent(other Snapshot) bool {
	if !s.Track.Same(other.Track) {
		return false
	}
	if s.Playing != other.Playing {
		return false
	}
	return s.Position.Round(PositionResolution) == other.Position.Round(PositionResolution)
}
