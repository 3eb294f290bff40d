// package playback adapts raw MPRIS media-session events into a uniform
// stream of playback snapshots.
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"

	"github.com/lyricbird/lyricbird/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"

	// seekThreshold: a reported position this far from the interpolated one
	// is a seek and snaps immediately. driftThreshold: smaller forward gaps
	// snap too; backward gaps below the seek threshold are jitter and are
	// ignored so lyrics never stutter backward.
	seekThreshold  = 2 * time.Second
	driftThreshold = 150 * time.Millisecond

	resubscribeDelay = 2 * time.Second
)

// Source subscribes to an MPRIS player on the session bus and yields a lazy,
// unbounded, deduplicated stream of snapshots. It is both poll and signal
// driven: PropertiesChanged and Seeked signals give low latency, the poll
// ticker guarantees progress when a player is quiet about position.
type Source struct {
	bus          *dbus.Conn
	service      string
	pollInterval time.Duration
	log          *log.Logger

	snapshots  chan Snapshot
	signalChan chan *dbus.Signal

	// interpolation state, only touched by Run's goroutine
	lastReported   time.Duration
	lastReportedAt time.Time
	playing        bool

	lastEmitted Snapshot
	haveEmitted bool
}

func NewSource(bus *dbus.Conn, mprisService string, pollInterval time.Duration, logger *log.Logger) (*Source, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if mprisService == "" {
		return nil, errors.New("empty mpris service name")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("invalid poll interval %v", pollInterval)
	}

	return &Source{
		bus:          bus,
		service:      mprisService,
		pollInterval: pollInterval,
		log:          logger.With("component", "playback"),
		snapshots:    make(chan Snapshot, 32),
	}, nil
}

func (s *Source) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// Run drives the source until ctx is cancelled, then closes the snapshot
// channel. Signal subscription failures degrade to pure polling; a closed
// signal channel triggers resubscription rather than a shutdown, and the
// last known state holds in the meantime.
func (s *Source) Run(ctx context.Context) error {
	if err := s.subscribe(); err != nil {
		s.log.Warn("dbus signal subscription failed, falling back to polling only", "err", err)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	defer close(s.snapshots)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			s.poll(ctx)

		case sig, ok := <-s.signalChan:
			if !ok {
				s.log.Warn("dbus signal channel closed, resubscribing")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(resubscribeDelay):
				}
				if err := s.subscribe(); err != nil {
					s.log.Warn("resubscribe failed, polling only", "err", err)
				}
				continue
			}
			s.handleSignal(ctx, sig)
		}
	}
}

func (s *Source) subscribe() error {
	signalChan := make(chan *dbus.Signal, 16)
	s.signalChan = signalChan
	s.bus.Signal(signalChan)

	matches := []string{
		fmt.Sprintf(
			"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
			s.service, mprisPath,
		),
		fmt.Sprintf(
			"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
			s.service, mprisPlayerIface, mprisPath,
		),
	}

	for _, match := range matches {
		if err := s.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, match).Err; err != nil {
			return fmt.Errorf("failed to add dbus match: %w", err)
		}
	}

	return nil
}

// Current performs a one-shot read of the player state. Used by the CLI
// utilities; Run uses the same reads through poll.
func (s *Source) Current() (Snapshot, error) {
	now := time.Now()

	trk, err := s.readTrack()
	if err != nil {
		return Snapshot{ObservedAt: now}, err
	}

	position, err := s.readPosition()
	if err != nil {
		return Snapshot{ObservedAt: now}, err
	}

	playing, err := s.readPlaying()
	if err != nil {
		return Snapshot{ObservedAt: now}, err
	}

	return Snapshot{Track: trk, Position: position, Playing: playing, ObservedAt: now}, nil
}

func (s *Source) poll(ctx context.Context) {
	snap, err := s.Current()
	if err != nil {
		// player gone from the bus: a steady no-session state, not an error
		s.emit(ctx, Snapshot{ObservedAt: time.Now()})
		return
	}

	snap.Position = s.correctPosition(snap.Position, snap.Playing, snap.ObservedAt)
	s.emit(ctx, snap)
}

// correctPosition reconciles the reported position against the interpolated
// one. Large jumps in either direction are seeks and snap; small forward
// gaps snap; small backward gaps hold the interpolated value.
func (s *Source) correctPosition(reported time.Duration, playing bool, now time.Time) time.Duration {
	defer func() {
		s.playing = playing
	}()

	if !playing || !s.playing || s.lastReportedAt.IsZero() {
		s.lastReported = reported
		s.lastReportedAt = now
		return reported
	}

	expected := s.lastReported + now.Sub(s.lastReportedAt)
	diff := reported - expected

	if diff > seekThreshold || diff < -seekThreshold || diff > driftThreshold {
		s.lastReported = reported
		s.lastReportedAt = now
		return reported
	}

	// backward jitter: keep interpolating from the previous fix
	return expected
}

func (s *Source) handleSignal(ctx context.Context, sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		s.handlePropertiesChanged(ctx, sig)
	case "org.mpris.MediaPlayer2.Player.Seeked":
		s.handleSeeked(ctx, sig)
	}
}

func (s *Source) handlePropertiesChanged(ctx context.Context, sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != mprisPlayerIface {
		return
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	_, metadataChanged := changed["Metadata"]
	_, statusChanged := changed["PlaybackStatus"]
	if !metadataChanged && !statusChanged {
		return
	}

	// a metadata or status change invalidates the interpolation fix
	s.lastReportedAt = time.Time{}
	s.poll(ctx)
}

func (s *Source) handleSeeked(ctx context.Context, sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}

	positionMicros, ok := sig.Body[0].(int64)
	if !ok || positionMicros < 0 {
		return
	}

	now := time.Now()
	position := time.Duration(positionMicros) * time.Microsecond
	s.lastReported = position
	s.lastReportedAt = now

	trk, err := s.readTrack()
	if err != nil {
		return
	}

	s.emit(ctx, Snapshot{Track: trk, Position: position, Playing: s.playing, ObservedAt: now})
}

// emit forwards a snapshot downstream unless it duplicates the previous one.
func (s *Source) emit(ctx context.Context, snap Snapshot) {
	if s.haveEmitted && snap.Equivalent(s.lastEmitted) {
		return
	}

	select {
	case s.snapshots <- snap:
		s.lastEmitted = snap
		s.haveEmitted = true
	case <-ctx.Done():
	}
}

// dbus property reads

func (s *Source) readTrack() (*track.Identity, error) {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	info := &track.Identity{
		Title:    extractString(metadata, "xesam:title"),
		Artist:   extractArtist(metadata, "xesam:artist"),
		Album:    extractString(metadata, "xesam:album"),
		Duration: extractDuration(metadata, "mpris:length"),
	}

	if !info.Valid() {
		// player is running but has nothing loaded
		return nil, nil
	}

	return info, nil
}

// ArtworkURL reads the album art location for the current track, if any.
func (s *Source) ArtworkURL() string {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return ""
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return ""
	}

	return extractString(metadata, "mpris:artUrl")
}

func (s *Source) readPosition() (time.Duration, error) {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Position")
	if err != nil {
		return 0, fmt.Errorf("failed to get position property: %w", err)
	}

	positionMicros, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}
	if positionMicros < 0 {
		return 0, nil
	}

	return time.Duration(positionMicros) * time.Microsecond, nil
}

func (s *Source) readPlaying() (bool, error) {
	obj := s.bus.Object(s.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return false, fmt.Errorf("failed to get playback status: %w", err)
	}

	status, ok := prop.Value().(string)
	if !ok {
		return false, fmt.Errorf("unexpected playback status type %T", prop.Value())
	}

	return status == "Playing", nil
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	text, ok := variant.Value().(string)
	if !ok {
		return ""
	}
	return text
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case string:
		return typed
	default:
		return ""
	}
}

func extractDuration(metadata map[string]dbus.Variant, key string) time.Duration {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		if typed <= 0 {
			return 0
		}
		return time.Duration(typed) * time.Microsecond
	case uint64:
		return time.Duration(typed) * time.Microsecond
	default:
		return 0
	}
}
