package track

import (
	"strings"
	"time"
)

// Identity names a track for change detection. Two snapshots belong to the
// same track when their normalized title and artist match; duration is
// carried as a hint for lyric matching but never takes part in identity
// (remixes and live versions collide on duration).
type Identity struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

func (t *Identity) Valid() bool {
	if t == nil {
		return false
	}
	return strings.TrimSpace(t.Title) != "" && strings.TrimSpace(t.Artist) != ""
}

// Key returns the normalized identity key (lowercased, whitespace-collapsed
// "title|artist") used for equality checks and cache lookups.
func (t *Identity) Key() string {
	if t == nil {
		return ""
	}
	return normalize(t.Title) + "|" + normalize(t.Artist)
}

func (t *Identity) Same(other *Identity) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Key() == other.Key()
}

func (t *Identity) String() string {
	if t == nil {
		return "<none>"
	}
	return t.Artist + " - " + t.Title
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
