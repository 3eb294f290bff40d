package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
mpris_service = "org.mpris.MediaPlayer2.vlc"
sync_offset = -1.5
context_before = 1
context_after = 3
poll_interval_ms = 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.MprisService != "org.mpris.MediaPlayer2.vlc" {
		t.Errorf("MprisService = %q", cfg.MprisService)
	}
	if cfg.Offset() != -1500*time.Millisecond {
		t.Errorf("Offset() = %v, expected -1.5s", cfg.Offset())
	}
	if cfg.ContextBefore != 1 || cfg.ContextAfter != 3 {
		t.Errorf("context lines = (%d, %d), expected (1, 3)", cfg.ContextBefore, cfg.ContextAfter)
	}
	if cfg.PollInterval() != 100*time.Millisecond {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}

	// unset fields fall back to defaults
	if cfg.LrclibURL != DefaultLrclibURL {
		t.Errorf("LrclibURL = %q, expected default", cfg.LrclibURL)
	}
	if cfg.Tolerance() != 2*time.Second {
		t.Errorf("Tolerance() = %v, expected 2s", cfg.Tolerance())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MPRIS_SERVICE", "org.mpris.MediaPlayer2.mpd")
	t.Setenv("SYNC_OFFSET", "0.75")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // no config file there

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MprisService != "org.mpris.MediaPlayer2.mpd" {
		t.Errorf("MprisService = %q", cfg.MprisService)
	}
	if cfg.SyncOffset != 0.75 {
		t.Errorf("SyncOffset = %v", cfg.SyncOffset)
	}
}

func TestSettingsLiveUpdates(t *testing.T) {
	s := NewSettings(&Config{SyncOffset: 1, ContextBefore: 2, ContextAfter: 2})

	if s.Offset() != time.Second {
		t.Fatalf("initial offset = %v", s.Offset())
	}

	got := s.AdjustOffset(-250 * time.Millisecond)
	if got != 750*time.Millisecond || s.Offset() != got {
		t.Errorf("AdjustOffset = %v, Offset = %v", got, s.Offset())
	}

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected a change notification after AdjustOffset")
	}

	// notifications coalesce: many writes, one pending signal
	s.SetOffset(0)
	s.SetOffset(time.Second)
	s.SetContextLines(1, 1)

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected a coalesced change notification")
	}
	select {
	case <-s.Changed():
		t.Fatal("expected notifications to coalesce into one")
	default:
	}

	before, after := s.ContextLines()
	if before != 1 || after != 1 {
		t.Errorf("context lines = (%d, %d)", before, after)
	}

	s.SetContextLines(-4, -1)
	before, after = s.ContextLines()
	if before != 0 || after != 0 {
		t.Errorf("negative context lines should clamp to zero, got (%d, %d)", before, after)
	}
}
