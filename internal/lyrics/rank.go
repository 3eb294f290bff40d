package lyrics

import (
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/lyricbird/lyricbird/internal/track"
)

// minSimilarity is the sanity floor for candidates matched without a
// duration hit: below this they are not the same song.
const minSimilarity = 0.5

// Rank picks the best candidate for a track, or nil when none survives the
// sanity check. Candidates whose reported duration falls within tolerance of
// the track's known duration win outright, ties resolved by backend order
// (the backend ranks by its own confidence). Without a duration match the
// remaining candidates are ranked by title/artist similarity.
func Rank(candidates []Candidate, id *track.Identity, tolerance time.Duration) *Candidate {
	usable := make([]*Candidate, 0, len(candidates))
	for i := range candidates {
		if candidates[i].SyncedLyrics != "" {
			usable = append(usable, &candidates[i])
		}
	}
	if len(usable) == 0 {
		return nil
	}

	if id.Duration > 0 {
		for _, cand := range usable {
			if durationDelta(cand, id) <= tolerance {
				return cand
			}
		}
	}

	// no duration hit: fall back to name similarity, backend order breaking ties
	want := searchKey(id.Artist, id.Title)
	jw := metrics.NewJaroWinkler()

	var best *Candidate
	var bestScore float64
	for _, cand := range usable {
		score := strutil.Similarity(want, searchKey(cand.ArtistName, cand.TrackName), jw)
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}

	if bestScore < minSimilarity {
		return nil
	}
	return best
}

func durationDelta(cand *Candidate, id *track.Identity) time.Duration {
	candDuration := time.Duration(cand.Duration * float64(time.Second))
	delta := candDuration - id.Duration
	if delta < 0 {
		delta = -delta
	}
	return delta
}

func searchKey(artist, title string) string {
	return strings.ToLower(strings.TrimSpace(artist) + " " + stripVersionInfo(title))
}

// stripVersionInfo drops parenthesized and bracketed suffixes (remaster,
// live, feat.) that lyric sources tag inconsistently.
func stripVersionInfo(s string) string {
	if idx := strings.IndexAny(s, "(["); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
