package ui

import (
	"charm.land/glamour/v2"
	"github.com/charmbracelet/lipgloss"
)

// maxReadableWidth caps word wrap for prose.
const maxReadableWidth = 100

// RenderMarkdown renders issue text with glamour, word wrapped at the
// terminal width. Returns markdown unchanged when colors are disabled or
// rendering fails.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}

	wrapWidth := min(TerminalWidth(80), maxReadableWidth)

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
