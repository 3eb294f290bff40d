// package engine reconciles the playback snapshot stream against lyric
// timelines and emits display events. It is the only owner of the active
// timeline and line pointer; everything else reads through its events.
package engine

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lyricbird/lyricbird/internal/config"
	"github.com/lyricbird/lyricbird/internal/lyrics"
	"github.com/lyricbird/lyricbird/internal/playback"
	"github.com/lyricbird/lyricbird/internal/timeline"
	"github.com/lyricbird/lyricbird/internal/track"
)

// State of the engine's track lifecycle.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateSynced
	StateNoLyrics
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateSynced:
		return "synced"
	case StateNoLyrics:
		return "no-lyrics"
	default:
		return "unknown"
	}
}

// Acquirer delivers a lyric timeline for a track, or lyrics.ErrNotFound.
// Implemented by *lyrics.Pipeline.
type Acquirer interface {
	Acquire(ctx context.Context, id *track.Identity) (*timeline.Timeline, error)
}

type acquireResult struct {
	gen      uint64
	track    *track.Identity
	timeline *timeline.Timeline
	err      error
}

// Options wires an Engine.
type Options struct {
	Snapshots <-chan playback.Snapshot
	Acquirer  Acquirer
	Settings  *config.Settings
	Logger    *log.Logger
}

// Engine is the sync orchestrator. All state below is touched only by the
// Run goroutine; acquisition runs on its own goroutine per track and reports
// back through the results channel with a generation tag, so a late result
// for a previous track is recognized and discarded.
type Engine struct {
	snapshots <-chan playback.Snapshot
	acquirer  Acquirer
	settings  *config.Settings
	log       *log.Logger

	events  chan Event
	results chan acquireResult

	state         State
	current       *track.Identity
	timeline      *timeline.Timeline
	lineIndex     int
	haveLine      bool
	lastSnap      playback.Snapshot
	haveSnap      bool
	gen           uint64
	cancelAcquire context.CancelFunc
}

func New(opts Options) (*Engine, error) {
	if opts.Snapshots == nil {
		return nil, errors.New("nil snapshot channel")
	}
	if opts.Acquirer == nil {
		return nil, errors.New("nil acquirer")
	}
	if opts.Settings == nil {
		return nil, errors.New("nil settings")
	}
	if opts.Logger == nil {
		return nil, errors.New("nil logger")
	}

	return &Engine{
		snapshots: opts.Snapshots,
		acquirer:  opts.Acquirer,
		settings:  opts.Settings,
		log:       opts.Logger.With("component", "engine"),
		events:    make(chan Event, 64),
		results:   make(chan acquireResult, 1),
	}, nil
}

// Events yields display events in the same order as the snapshots that
// produced them. Closed after Run returns a final ClearDisplay.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Run consumes snapshots until ctx is cancelled or the snapshot channel
// closes. Shutdown cancels any in-flight acquisition, emits a final
// ClearDisplay, and closes the event channel; no background work survives.
func (e *Engine) Run(ctx context.Context) error {
	defer func() {
		if e.cancelAcquire != nil {
			e.cancelAcquire()
		}
		e.events <- ClearDisplay{}
		close(e.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-e.snapshots:
			if !ok {
				return nil
			}
			e.handleSnapshot(ctx, snap)

		case res := <-e.results:
			e.handleResult(res)

		case <-e.settings.Changed():
			// offset or context-lines changed: recompute against the last
			// snapshot instead of waiting for the next playback event
			if e.state == StateSynced && e.haveSnap {
				e.recompute(false)
			}
		}
	}
}

func (e *Engine) handleSnapshot(ctx context.Context, snap playback.Snapshot) {
	// buffered events racing a track change arrive late; resolve by timestamp
	if e.haveSnap && snap.ObservedAt.Before(e.lastSnap.ObservedAt) {
		e.log.Debug("dropping out-of-order snapshot", "observed_at", snap.ObservedAt)
		return
	}

	if snap.NoSession() {
		e.lastSnap = snap
		e.haveSnap = true
		if e.state != StateIdle {
			e.toIdle()
		}
		return
	}

	if !snap.Track.Same(e.current) {
		e.lastSnap = snap
		e.haveSnap = true
		e.startAcquisition(ctx, snap.Track)
		return
	}

	// paused players repeat identical positions; the adapter dedupes most of
	// them and recompute only emits on an index change, so repeats are free
	e.lastSnap = snap
	e.haveSnap = true

	if e.state == StateSynced {
		e.recompute(false)
	}
}

func (e *Engine) toIdle() {
	e.stopAcquisition()
	e.state = StateIdle
	e.current = nil
	e.timeline = nil
	e.haveLine = false
	e.emit(ClearDisplay{})
	e.log.Debug("no active session, display cleared")
}

// startAcquisition discards the current timeline and dispatches acquisition
// for the new track. The generation tag makes any still-in-flight result for
// the previous track ignorable.
func (e *Engine) startAcquisition(ctx context.Context, id *track.Identity) {
	e.stopAcquisition()

	e.gen++
	e.current = id
	e.timeline = nil
	e.haveLine = false
	e.state = StateAcquiring
	e.emit(ShowStatus{Track: id, Status: StatusAcquiring})
	e.log.Info("track changed", "track", id.String())

	acquireCtx, cancel := context.WithCancel(ctx)
	e.cancelAcquire = cancel

	gen := e.gen
	go func() {
		tl, err := e.acquirer.Acquire(acquireCtx, id)
		select {
		case e.results <- acquireResult{gen: gen, track: id, timeline: tl, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) stopAcquisition() {
	if e.cancelAcquire != nil {
		e.cancelAcquire()
		e.cancelAcquire = nil
	}
}

func (e *Engine) handleResult(res acquireResult) {
	if res.gen != e.gen {
		// result for a track we already left; not an error
		e.log.Debug("discarding stale acquisition result", "track", res.track.String())
		return
	}
	if e.state != StateAcquiring {
		return
	}

	if res.err != nil {
		if errors.Is(res.err, context.Canceled) {
			return
		}
		if !errors.Is(res.err, lyrics.ErrNotFound) {
			e.log.Warn("acquisition failed", "track", res.track.String(), "err", res.err)
		}
		e.state = StateNoLyrics
		e.emit(ShowStatus{Track: res.track, Status: StatusNoLyricsFound})
		return
	}

	e.state = StateSynced
	e.timeline = res.timeline
	e.log.Info("lyrics acquired", "track", res.track.String(), "lines", res.timeline.Len())

	if e.haveSnap && !e.lastSnap.NoSession() {
		e.recompute(true)
	}
}

// recompute maps the last snapshot's position to a line and emits on change.
// force emits even when the index is unchanged (used right after acquiring,
// when nothing has been shown for this timeline yet).
func (e *Engine) recompute(force bool) {
	index, ok := e.timeline.LineAt(e.lastSnap.Position, e.settings.Offset())

	if !ok {
		// before the first line; clear whatever was showing
		if e.haveLine || force {
			e.haveLine = false
			e.emit(ClearDisplay{})
		}
		return
	}

	if e.haveLine && index == e.lineIndex && !force {
		return
	}

	e.lineIndex = index
	e.haveLine = true

	before, after := e.settings.ContextLines()
	prev, next := e.timeline.Context(index, before, after)

	e.emit(ShowLine{
		Track:   e.current,
		Index:   index,
		Current: e.timeline.Lines[index],
		Before:  prev,
		After:   next,
	})
}

func (e *Engine) emit(event Event) {
	e.events <- event
}
