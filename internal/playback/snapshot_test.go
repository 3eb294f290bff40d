package playback

import (
	"testing"
	"time"

	"github.com/lyricbird/lyricbird/internal/track"
)

func TestSnapshotEquivalent(t *testing.T) {
	hello := &track.Identity{Title: "Hello", Artist: "Adele"}
	other := &track.Identity{Title: "Skyfall", Artist: "Adele"}
	now := time.Now()

	tests := []struct {
		name       string
		a          Snapshot
		b          Snapshot
		equivalent bool
	}{
		{
			name:       "identical",
			a:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: true, ObservedAt: now},
			b:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: true, ObservedAt: now.Add(time.Second)},
			equivalent: true,
		},
		{
			name:       "position differs below resolution",
			a:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: true},
			b:          Snapshot{Track: hello, Position: 5*time.Second + 20*time.Millisecond, Playing: true},
			equivalent: true,
		},
		{
			name:       "position differs above resolution",
			a:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: true},
			b:          Snapshot{Track: hello, Position: 5*time.Second + 300*time.Millisecond, Playing: true},
			equivalent: false,
		},
		{
			name:       "play state differs",
			a:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: true},
			b:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: false},
			equivalent: false,
		},
		{
			name:       "track differs",
			a:          Snapshot{Track: hello, Position: 5 * time.Second, Playing: true},
			b:          Snapshot{Track: other, Position: 5 * time.Second, Playing: true},
			equivalent: false,
		},
		{
			name:       "no-session snapshots",
			a:          Snapshot{},
			b:          Snapshot{},
			equivalent: true,
		},
		{
			name:       "no-session vs track",
			a:          Snapshot{},
			b:          Snapshot{Track: hello},
			equivalent: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.a.Equivalent(test.b); got != test.equivalent {
				t.Errorf("Equivalent() = %v, expected %v", got, test.equivalent)
			}
		})
	}
}

func TestCorrectPosition(t *testing.T) {
	base := time.Now()
	s := &Source{}

	// first observation snaps to the reported value
	got := s.correctPosition(10*time.Second, true, base)
	if got != 10*time.Second {
		t.Fatalf("first fix = %v, expected 10s", got)
	}

	// small backward jitter holds the interpolated position
	got = s.correctPosition(10*time.Second+900*time.Millisecond, true, base.Add(time.Second))
	if got != 11*time.Second {
		t.Errorf("backward jitter: got %v, expected interpolated 11s", got)
	}

	// forward drift beyond the threshold snaps forward
	got = s.correctPosition(13*time.Second, true, base.Add(2*time.Second))
	if got != 13*time.Second {
		t.Errorf("forward drift: got %v, expected snap to 13s", got)
	}

	// a large backward jump is a seek and snaps
	got = s.correctPosition(2*time.Second, true, base.Add(3*time.Second))
	if got != 2*time.Second {
		t.Errorf("seek: got %v, expected snap to 2s", got)
	}

	// paused playback always takes the reported value
	got = s.correctPosition(2*time.Second, false, base.Add(4*time.Second))
	if got != 2*time.Second {
		t.Errorf("paused: got %v, expected 2s", got)
	}
}
