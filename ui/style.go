package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Colorize applies the given color to the text using lipgloss.
// color is the integer representation from Modrinth; zero means the project
// has no color and the text is returned unchanged.
func Colorize(text string, color int) string {
	if color <= 0 {
		return text
	}

	// Convert Modrinth color int to hex string
	hexColor := fmt.Sprintf("#%06x", color&0xffffff)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return style.Render(text)
}
