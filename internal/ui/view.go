package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if !m.hideHeader {
		b.WriteString(m.renderHeader())
		b.WriteString("\n")
	}

	b.WriteString(m.renderBody())

	content := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) renderHeader() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))

	if m.track == nil {
		banner := figure.NewFigure("lyricbird", "small", true).String()
		return dim.Render(banner)
	}

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Secondary)).
		Bold(true).
		Render(m.track.Title)
	artist := dim.Render(m.track.Artist)

	header := title + "  " + artist
	if m.offset != 0 {
		header += dim.Render(fmt.Sprintf("  [offset %+.1fs]", m.offset.Seconds()))
	}
	return header
}

func (m Model) renderBody() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))

	if m.track == nil {
		return dim.Render("waiting for music...")
	}

	if m.status != "" {
		return dim.Render(m.status)
	}

	if !m.haveLine {
		return ""
	}

	highlight := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Primary)).
		Bold(true)
	context := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Secondary))

	var lines []string
	for _, line := range m.before {
		lines = append(lines, context.Render(line.Text))
	}
	lines = append(lines, highlight.Render(lineOrGap(m.current.Text)))
	for _, line := range m.after {
		lines = append(lines, context.Render(line.Text))
	}

	return strings.Join(lines, "\n")
}

// lineOrGap keeps instrumental gaps visible instead of collapsing the
// highlight row to nothing.
func lineOrGap(text string) string {
	if text == "" {
		return "♪"
	}
	return text
}
