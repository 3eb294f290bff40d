package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lyricbird/lyricbird/internal/artwork"
	"github.com/lyricbird/lyricbird/internal/config"
	"github.com/lyricbird/lyricbird/internal/engine"
	"github.com/lyricbird/lyricbird/internal/timeline"
	"github.com/lyricbird/lyricbird/internal/track"
)

// offset adjustment steps for the hotkeys
const (
	offsetStepSmall = 100 * time.Millisecond
	offsetStepLarge = 500 * time.Millisecond
)

type EngineEventMsg struct {
	Event engine.Event
	OK    bool
}

type ArtworkMsg struct {
	Palette *artwork.Palette
}

// Model is the terminal display sink. It renders engine events verbatim and
// owns no sync state: its only write path back into the system is the live
// settings cell for the sync offset.
type Model struct {
	events     <-chan engine.Event
	settings   *config.Settings
	artworkURL func() string
	hideHeader bool

	track    *track.Identity
	status   string
	haveLine bool
	current  timeline.Line
	before   []timeline.Line
	after    []timeline.Line
	palette  *artwork.Palette
	offset   time.Duration

	width    int
	height   int
	quitting bool
}

type ModelConfig struct {
	Events     <-chan engine.Event
	Settings   *config.Settings
	ArtworkURL func() string
	HideHeader bool
}

func NewModel(cfg ModelConfig) Model {
	return Model{
		events:     cfg.Events,
		settings:   cfg.Settings,
		artworkURL: cfg.ArtworkURL,
		hideHeader: cfg.HideHeader,
		palette:    artwork.DefaultPalette(),
		offset:     cfg.Settings.Offset(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.listenForEvents()
}

func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		return EngineEventMsg{Event: event, OK: ok}
	}
}

func fetchArtworkCmd(artworkURL string) tea.Cmd {
	return func() tea.Msg {
		img, err := artwork.Fetch(artworkURL)
		if err != nil {
			return ArtworkMsg{Palette: artwork.DefaultPalette()}
		}
		return ArtworkMsg{Palette: artwork.ExtractPalette(img)}
	}
}

func (m *Model) clear() {
	m.track = nil
	m.status = ""
	m.haveLine = false
	m.before = nil
	m.after = nil
}
