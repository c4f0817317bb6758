package cmd

import (
	"fmt"
	"strings"

	"modpack-builder/db"
	"modpack-builder/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// historyModel is the interactive build history browser.
type historyModel struct {
	builds        []db.Build
	selectedIndex int
	expanded      bool
	width         int
	height        int
}

func newHistoryModel(builds []db.Build) historyModel {
	return historyModel{builds: builds, width: 80, height: 24}
}

func (m historyModel) Init() tea.Cmd {
	return nil
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m historyModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.builds)-1 {
			m.selectedIndex++
		}
	case "enter", " ":
		m.expanded = !m.expanded
	case "esc":
		m.expanded = false
	}
	return m, nil
}

func (m historyModel) View() string {
	if len(m.builds) == 0 {
		return "No builds recorded yet. Run the build command first!\n"
	}

	var output string
	output += renderHistoryHeader()
	output += "\n"

	for i, b := range m.builds {
		output += m.renderBuildRow(i, b)
		output += "\n"
	}

	if m.expanded {
		output += "\n" + renderBuildDetail(m.builds[m.selectedIndex])
	}

	output += "\n" + renderHistoryFooter()
	return output
}

func renderHistoryHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("%-17s %-40s %-10s %-10s %s", "Built", "Archive", "Version", "Loader", "Mods"))
}

func renderHistoryFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	return footerStyle.Render("↑/k: up  ↓/j: down  enter: details  q: quit")
}

func (m historyModel) renderBuildRow(index int, b db.Build) string {
	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.
			Background(lipgloss.Color("8")).
			Bold(true)
	}

	mods := fmt.Sprintf("%d", len(b.Mods))
	if len(b.Skipped) > 0 {
		mods += lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(fmt.Sprintf(" (%d skipped)", len(b.Skipped)))
	}

	row := fmt.Sprintf("%-17s %-40s %-10s %-10s %s",
		b.CreatedAt.Format("2006-01-02 15:04"),
		truncate(b.Name, 38),
		truncate(b.GameVersion, 10),
		truncate(b.Loader, 10),
		mods,
	)
	return rowStyle.Render(row)
}

func renderBuildDetail(b db.Build) string {
	var sb strings.Builder
	if b.Theme != "" {
		fmt.Fprintf(&sb, "Theme: %s\n", b.Theme)
	}
	fmt.Fprintf(&sb, "Archive: %s\n", b.ArchivePath)

	for _, mod := range b.Mods {
		title := mod.Title
		if title == "" {
			title = mod.ProjectID
		}
		marker := " "
		switch {
		case mod.RequestedByUser:
			marker = "*"
		case mod.Dependency:
			marker = "+"
		}
		file := mod.FileName
		if file == "" {
			file = "no file"
		}
		fmt.Fprintf(&sb, "  %s %-38s %s\n", marker, ui.Colorize(truncate(title, 38), mod.Color), file)
	}
	for _, s := range b.Skipped {
		fmt.Fprintf(&sb, "  %s %s [%s]: %s\n",
			lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("x"), s.Name, s.Stage, s.Reason)
	}
	return sb.String()
}
