package engine

import (
	"github.com/lyricbird/lyricbird/internal/timeline"
	"github.com/lyricbird/lyricbird/internal/track"
)

// Event is what the engine emits toward the display sink. The sink renders
// events verbatim and owns no sync state of its own.
type Event interface {
	isEvent()
}

// ClearDisplay tells the sink to show nothing.
type ClearDisplay struct{}

// ShowLine carries the active lyric line and its context window.
type ShowLine struct {
	Track   *track.Identity
	Index   int
	Current timeline.Line
	Before  []timeline.Line
	After   []timeline.Line
}

// Status values for ShowStatus.
type Status int

const (
	StatusAcquiring Status = iota
	StatusNoLyricsFound
)

func (s Status) String() string {
	switch s {
	case StatusAcquiring:
		return "acquiring"
	case StatusNoLyricsFound:
		return "no lyrics found"
	default:
		return "unknown"
	}
}

// ShowStatus reports a non-lyric display state for the current track.
type ShowStatus struct {
	Track  *track.Identity
	Status Status
}

func (ClearDisplay) isEvent() {}
func (ShowLine) isEvent()     {}
func (ShowStatus) isEvent()   {}
