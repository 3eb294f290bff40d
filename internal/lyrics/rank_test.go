package lyrics

import (
	"testing"
	"time"

	"github.com/lyricbird/lyricbird/internal/track"
)

func TestRankPrefersDurationWithinTolerance(t *testing.T) {
	id := &track.Identity{Title: "Hello", Artist: "Adele", Duration: 183 * time.Second}

	candidates := []Candidate{
		{ID: 1, TrackName: "Hello", ArtistName: "Adele", Duration: 210, SyncedLyrics: "[00:01.00]a"},
		{ID: 2, TrackName: "Hello", ArtistName: "Adele", Duration: 182, SyncedLyrics: "[00:01.00]b"},
	}

	best := Rank(candidates, id, 2*time.Second)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected the 182s candidate for a 183s track, got %+v", best)
	}
}

func TestRankBackendOrderBreaksTies(t *testing.T) {
	id := &track.Identity{Title: "Hello", Artist: "Adele", Duration: 183 * time.Second}

	// both within tolerance: the backend's first wins
	candidates := []Candidate{
		{ID: 1, TrackName: "Hello", ArtistName: "Adele", Duration: 184, SyncedLyrics: "[00:01.00]a"},
		{ID: 2, TrackName: "Hello", ArtistName: "Adele", Duration: 183, SyncedLyrics: "[00:01.00]b"},
	}

	best := Rank(candidates, id, 2*time.Second)
	if best == nil || best.ID != 1 {
		t.Fatalf("expected backend order to break the tie, got %+v", best)
	}
}

func TestRankSkipsCandidatesWithoutSyncedLyrics(t *testing.T) {
	id := &track.Identity{Title: "Hello", Artist: "Adele", Duration: 183 * time.Second}

	candidates := []Candidate{
		{ID: 1, TrackName: "Hello", ArtistName: "Adele", Duration: 183, PlainLyrics: "plain only"},
		{ID: 2, TrackName: "Hello", ArtistName: "Adele", Duration: 184, SyncedLyrics: "[00:01.00]b"},
	}

	best := Rank(candidates, id, 2*time.Second)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected the synced candidate, got %+v", best)
	}
}

func TestRankFallsBackToSimilarity(t *testing.T) {
	// no usable duration hint
	id := &track.Identity{Title: "Hello (Remastered 2016)", Artist: "Adele"}

	candidates := []Candidate{
		{ID: 1, TrackName: "Completely Different Song", ArtistName: "Somebody", SyncedLyrics: "[00:01.00]a"},
		{ID: 2, TrackName: "Hello", ArtistName: "Adele", SyncedLyrics: "[00:01.00]b"},
	}

	best := Rank(candidates, id, 2*time.Second)
	if best == nil || best.ID != 2 {
		t.Fatalf("expected the similar-name candidate, got %+v", best)
	}
}

func TestRankRejectsImplausibleCandidates(t *testing.T) {
	id := &track.Identity{Title: "Bohemian Rhapsody", Artist: "Queen"}

	candidates := []Candidate{
		{ID: 1, TrackName: "Zzz", ArtistName: "Xxxxx", SyncedLyrics: "[00:01.00]a"},
	}

	if best := Rank(candidates, id, 2*time.Second); best != nil {
		t.Fatalf("expected nil for a totally dissimilar candidate, got %+v", best)
	}
}

func TestRankEmpty(t *testing.T) {
	id := &track.Identity{Title: "Hello", Artist: "Adele"}
	if best := Rank(nil, id, 2*time.Second); best != nil {
		t.Fatalf("expected nil for zero candidates, got %+v", best)
	}
}

func TestStripVersionInfo(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Hello (Remastered 2016)", "Hello"},
		{"Hello [Live]", "Hello"},
		{"Hello", "Hello"},
		{"(Untitled)", "(Untitled)"},
	}

	for _, test := range tests {
		if got := stripVersionInfo(test.in); got != test.expected {
			t.Errorf("stripVersionInfo(%q) = %q, expected %q", test.in, got, test.expected)
		}
	}
}
