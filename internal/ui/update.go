package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lyricbird/lyricbird/internal/artwork"
	"github.com/lyricbird/lyricbird/internal/engine"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case EngineEventMsg:
		return m.handleEngineEvent(msg)

	case ArtworkMsg:
		if msg.Palette != nil {
			m.palette = msg.Palette
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k", "+", "=":
		m.offset = m.settings.AdjustOffset(offsetStepSmall)
		return m, nil

	case "down", "j", "-":
		m.offset = m.settings.AdjustOffset(-offsetStepSmall)
		return m, nil

	case "right", "l":
		m.offset = m.settings.AdjustOffset(offsetStepLarge)
		return m, nil

	case "left", "h":
		m.offset = m.settings.AdjustOffset(-offsetStepLarge)
		return m, nil

	case "0":
		m.settings.SetOffset(0)
		m.offset = 0
		return m, nil

	case "tab", "i":
		m.hideHeader = !m.hideHeader
		return m, nil
	}

	return m, nil
}

func (m Model) handleEngineEvent(msg EngineEventMsg) (tea.Model, tea.Cmd) {
	if !msg.OK {
		// engine shut down; follow it
		m.quitting = true
		return m, tea.Quit
	}

	cmds := []tea.Cmd{m.listenForEvents()}

	switch event := msg.Event.(type) {
	case engine.ClearDisplay:
		m.clear()

	case engine.ShowStatus:
		trackChanged := !event.Track.Same(m.track)
		m.track = event.Track
		m.status = event.Status.String()
		m.haveLine = false
		m.before = nil
		m.after = nil

		if trackChanged {
			m.palette = artwork.DefaultPalette()
			if m.artworkURL != nil {
				if artURL := m.artworkURL(); artURL != "" {
					cmds = append(cmds, fetchArtworkCmd(artURL))
				}
			}
		}

	case engine.ShowLine:
		m.track = event.Track
		m.status = ""
		m.haveLine = true
		m.current = event.Current
		m.before = event.Before
		m.after = event.After
	}

	return m, tea.Batch(cmds...)
}
