package lyrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lyricbird/lyricbird/internal/cache"
	"github.com/lyricbird/lyricbird/internal/timeline"
	"github.com/lyricbird/lyricbird/internal/track"
)

// ErrNotFound means acquisition completed and the track has no usable
// synced lyrics. It is a normal outcome, never fatal to the caller.
var ErrNotFound = errors.New("no synced lyrics found")

// Pipeline turns a track identity into a lyric timeline: per-run cache,
// exact backend lookup, candidate search with ranking, and negative-result
// caching so a track is queried at most once per run. It never blocks the
// sync engine: the engine invokes Acquire on its own goroutine and receives
// the outcome as an event.
type Pipeline struct {
	client    *Client
	store     *cache.Store
	tolerance time.Duration
	log       *log.Logger
}

func NewPipeline(client *Client, store *cache.Store, tolerance time.Duration, logger *log.Logger) *Pipeline {
	return &Pipeline{
		client:    client,
		store:     store,
		tolerance: tolerance,
		log:       logger.With("component", "pipeline"),
	}
}

// Acquire fetches the lyric timeline for a track. Returns ErrNotFound when
// no lyrics exist; other errors only for cancellation. Backend exhaustion is
// cached as not-found for the rest of the run; cancellation is not an
// outcome and leaves the cache untouched.
func (p *Pipeline) Acquire(ctx context.Context, id *track.Identity) (*timeline.Timeline, error) {
	if !id.Valid() {
		return nil, ErrNotFound
	}

	if entry, ok := p.store.Get(id); ok {
		if entry.NotFound {
			return nil, ErrNotFound
		}
		return entry.Timeline, nil
	}

	tl, err := p.fetch(ctx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		if !errors.Is(err, ErrNotFound) && !errors.Is(err, errNoMatch) {
			p.log.Warn("lyric acquisition failed", "track", id.String(), "err", err)
		}
		p.store.Set(id, cache.Entry{NotFound: true})
		return nil, ErrNotFound
	}

	p.store.Set(id, cache.Entry{Timeline: tl})
	return tl, nil
}

// Forget drops the cached result so the next Acquire hits the backend again.
// Backs the explicit user retry.
func (p *Pipeline) Forget(id *track.Identity) {
	p.store.Delete(id)
}

func (p *Pipeline) fetch(ctx context.Context, id *track.Identity) (*timeline.Timeline, error) {
	// exact lookup first; the backend's own matching is better than ours
	exact, err := p.client.Get(ctx, id.Title, id.Artist, id.Album, id.Duration)
	if err == nil && exact.SyncedLyrics != "" {
		return p.parse(exact, id)
	}
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, err
	}

	candidates, err := p.client.Search(ctx, id.Title, id.Artist)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}

	p.log.Debug("ranking candidates", "track", id.String(), "count", len(candidates))

	best := Rank(candidates, id, p.tolerance)
	if best == nil {
		return nil, ErrNotFound
	}

	return p.parse(best, id)
}

func (p *Pipeline) parse(cand *Candidate, id *track.Identity) (*timeline.Timeline, error) {
	tl, err := timeline.Parse(cand.SyncedLyrics, "lrclib")
	if err != nil {
		// malformed or empty payload degrades to not-found for this track
		return nil, fmt.Errorf("unusable lyrics payload: %w", errors.Join(ErrNotFound, err))
	}

	if tl.Dropped > 0 {
		p.log.Warn("dropped unparsable lyric lines", "track", id.String(), "dropped", tl.Dropped)
	}

	tl.TrackDuration = id.Duration
	if tl.TrackDuration == 0 && cand.Duration > 0 {
		tl.TrackDuration = time.Duration(cand.Duration * float64(time.Second))
	}

	return tl, nil
}
