package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lyricbird/lyricbird/internal/cache"
	"github.com/lyricbird/lyricbird/internal/track"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestPipeline(t *testing.T, handler http.Handler) (*Pipeline, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, testLogger())
	return NewPipeline(client, cache.NewStore(), 2*time.Second, testLogger()), server
}

func TestAcquireViaExactLookup(t *testing.T) {
	var gets atomic.Int32

	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get":
			gets.Add(1)
			json.NewEncoder(w).Encode(Candidate{
				TrackName:    "Hello",
				ArtistName:   "Adele",
				Duration:     183,
				SyncedLyrics: "[00:00.00]Hello\n[00:05.00]World",
			})
		default:
			http.NotFound(w, r)
		}
	}))

	id := &track.Identity{Title: "Hello", Artist: "Adele", Duration: 183 * time.Second}

	tl, err := pipeline.Acquire(context.Background(), id)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("got %d lines, expected 2", tl.Len())
	}
	if tl.TrackDuration != 183*time.Second {
		t.Errorf("TrackDuration = %v, expected 183s", tl.TrackDuration)
	}

	// second acquire is served from the per-run cache
	if _, err := pipeline.Acquire(context.Background(), id); err != nil {
		t.Fatalf("cached Acquire failed: %v", err)
	}
	if gets.Load() != 1 {
		t.Errorf("backend hit %d times, expected 1 (cache must absorb the repeat)", gets.Load())
	}
}

func TestAcquireFallsBackToSearch(t *testing.T) {
	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get":
			http.NotFound(w, r)
		case "/search":
			json.NewEncoder(w).Encode([]Candidate{
				{TrackName: "Hello", ArtistName: "Adele", Duration: 210, SyncedLyrics: "[00:01.00]wrong version"},
				{TrackName: "Hello", ArtistName: "Adele", Duration: 182, SyncedLyrics: "[00:01.00]right version"},
			})
		default:
			http.NotFound(w, r)
		}
	}))

	id := &track.Identity{Title: "Hello", Artist: "Adele", Duration: 183 * time.Second}

	tl, err := pipeline.Acquire(context.Background(), id)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if tl.Lines[0].Text != "right version" {
		t.Errorf("picked %q, expected the duration-matched candidate", tl.Lines[0].Text)
	}
}

func TestAcquireCachesNotFound(t *testing.T) {
	var searches atomic.Int32

	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			searches.Add(1)
			json.NewEncoder(w).Encode([]Candidate{})
			return
		}
		http.NotFound(w, r)
	}))

	id := &track.Identity{Title: "Obscure", Artist: "Nobody"}

	for i := 0; i < 3; i++ {
		_, err := pipeline.Acquire(context.Background(), id)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Acquire #%d err = %v, expected ErrNotFound", i, err)
		}
	}

	if searches.Load() != 1 {
		t.Errorf("backend searched %d times, expected 1 (negative result must be cached)", searches.Load())
	}

	// explicit retry forgets the cached negative result
	pipeline.Forget(id)
	if _, err := pipeline.Acquire(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("post-Forget Acquire err = %v", err)
	}
	if searches.Load() != 2 {
		t.Errorf("backend searched %d times after Forget, expected 2", searches.Load())
	}
}

func TestAcquireBackendFailureDegradesToNotFound(t *testing.T) {
	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	id := &track.Identity{Title: "Hello", Artist: "Adele"}

	if _, err := pipeline.Acquire(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, expected ErrNotFound after retry exhaustion", err)
	}
}

func TestAcquireCancellationIsNotCached(t *testing.T) {
	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Candidate{SyncedLyrics: "[00:01.00]late"})
	}))

	id := &track.Identity{Title: "Hello", Artist: "Adele"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Acquire(ctx, id)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, expected context.Canceled", err)
	}

	// the cancelled attempt must not have poisoned the cache
	tl, err := pipeline.Acquire(context.Background(), id)
	if err != nil {
		t.Fatalf("fresh Acquire after cancellation failed: %v", err)
	}
	if tl.Len() != 1 {
		t.Errorf("got %d lines, expected 1", tl.Len())
	}
}

func TestAcquireInvalidIdentity(t *testing.T) {
	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for an invalid identity")
	}))

	if _, err := pipeline.Acquire(context.Background(), &track.Identity{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, expected ErrNotFound", err)
	}
}

func TestAcquireUnusablePayload(t *testing.T) {
	pipeline, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Candidate{SyncedLyrics: "no timestamps here\njust prose"})
	}))

	id := &track.Identity{Title: "Hello", Artist: "Adele"}

	if _, err := pipeline.Acquire(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, expected ErrNotFound for an unusable payload", err)
	}
}
