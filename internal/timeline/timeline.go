// package timeline models a parsed synced-lyrics transcript as an ordered,
// queryable sequence of timestamped lines.
package timeline

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyPayload means the raw payload had no content at all.
	ErrEmptyPayload = errors.New("empty lyrics payload")
	// ErrNoSyncedLines means the payload had content but not a single
	// parsable timestamped line. Callers treat this as "no lyrics
	// available" for the track, not as a fatal parse failure.
	ErrNoSyncedLines = errors.New("no synced lines in payload")
)

// introGap is injected as a leading "..." line when the first lyric starts
// well into the song, so the display is not blank during a long intro.
const (
	introThreshold = 8 * time.Second
	introStart     = 5 * time.Second
	introText      = "..."
)

// Line is a single timestamped lyric line. An empty Text is valid and
// represents an instrumental gap.
type Line struct {
	Start time.Duration
	Text  string
}

// Timeline is the ordered lyric sequence for one track. Lines are sorted by
// Start (stable, ties keep source order) and never mutated after Parse; the
// sync engine replaces the whole timeline on track change.
type Timeline struct {
	Lines         []Line
	Source        string
	FetchedAt     time.Time
	TrackDuration time.Duration

	// Dropped counts input lines whose timestamp could not be parsed.
	Dropped int
}

func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Lines)
}

// Parse converts raw [mm:ss.xx]text lyrics into a Timeline. Lines with
// unparsable timestamps are dropped and counted, not fatal. A payload that
// yields zero valid lines returns ErrNoSyncedLines.
func Parse(raw string, source string) (*Timeline, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyPayload
	}

	rawLines := strings.Split(raw, "\n")
	lines := make([]Line, 0, len(rawLines))
	dropped := 0

	for _, rawLine := range rawLines {
		trimmed := strings.TrimSpace(rawLine)
		if trimmed == "" {
			continue
		}

		timePart, text, ok := splitLrcLine(trimmed)
		if !ok {
			dropped++
			continue
		}

		start, err := parseLrcTime(timePart)
		if err != nil {
			dropped++
			continue
		}

		lines = append(lines, Line{Start: start, Text: text})
	}

	if len(lines) == 0 {
		return nil, ErrNoSyncedLines
	}

	// stable sort keeps source order for equal timestamps
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Start < lines[j].Start
	})

	if lines[0].Start > introThreshold {
		lines = append([]Line{{Start: introStart, Text: introText}}, lines...)
	}

	return &Timeline{
		Lines:     lines,
		Source:    source,
		FetchedAt: time.Now(),
		Dropped:   dropped,
	}, nil
}

// LineAt returns the index of the line whose [Start, next Start) interval
// contains position+offset. The last line holds until the end of the track
// (lyrics carry no end marker). ok is false before the first line's start.
// Lookup is a binary search: lyric timestamps are irregularly spaced, so
// correctness only depends on the sort order, not on any spacing assumption.
func (t *Timeline) LineAt(position, offset time.Duration) (int, bool) {
	if t.Len() == 0 {
		return 0, false
	}

	effective := position + offset

	// first index whose start is strictly after the effective position
	next := sort.Search(len(t.Lines), func(i int) bool {
		return t.Lines[i].Start > effective
	})
	if next == 0 {
		return 0, false
	}

	return next - 1, true
}

// Context returns up to before preceding and after following lines around
// index, clipped at the timeline bounds. Out-of-range counts and indexes are
// clamped, never a panic.
func (t *Timeline) Context(index, before, after int) (prev, next []Line) {
	n := t.Len()
	if n == 0 || index < 0 || index >= n {
		return nil, nil
	}
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	lo := index - before
	if lo < 0 {
		lo = 0
	}
	hi := index + 1 + after
	if hi > n {
		hi = n
	}

	return t.Lines[lo:index], t.Lines[index+1 : hi]
}

func splitLrcLine(line string) (timePart, text string, ok bool) {
	if !strings.HasPrefix(line, "[") {
		return "", "", false
	}

	end := strings.Index(line, "]")
	if end <= 1 {
		return "", "", false
	}

	// empty text after the tag is a valid instrumental gap
	return line[1:end], strings.TrimSpace(line[end+1:]), true
}

func parseLrcTime(raw string) (time.Duration, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time format: %s", raw)
	}

	var hours, minutes, seconds float64
	var err error

	if len(parts) == 3 {
		if hours, err = parseFloat(parts[0]); err != nil {
			return 0, err
		}
		parts = parts[1:]
	}
	if minutes, err = parseFloat(parts[0]); err != nil {
		return 0, err
	}
	if seconds, err = parseFloat(parts[1]); err != nil {
		return 0, err
	}

	total := hours*3600 + minutes*60 + seconds
	if total < 0 {
		return 0, errors.New("negative time not allowed")
	}

	return time.Duration(total * float64(time.Second)), nil
}

func parseFloat(s string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse number %q: %w", s, err)
	}
	return value, nil
}
