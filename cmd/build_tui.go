package cmd

import (
	"context"
	"fmt"

	"modpack-builder/pipeline"
	"modpack-builder/ui"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// buildFunc runs one build, reporting progress through the given func.
type buildFunc func(ctx context.Context, progress pipeline.ProgressFunc) (*pipeline.Result, error)

// progressClosedMsg is sent once the build goroutine has finished.
type progressClosedMsg struct{}

// BuildModel controls the UI for the build command
type BuildModel struct {
	spinner      spinner.Model
	progressChan chan pipeline.Event

	// State
	status  string
	found   []string
	fetched []string
	skipped []string
	summary string
	done    bool

	// Counters
	totalFound   int
	totalFetched int
	totalSkipped int
}

func initialBuildModel(progressChan chan pipeline.Event) BuildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return BuildModel{
		spinner:      s,
		progressChan: progressChan,
		status:       "Initializing...",
	}
}

func (m BuildModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

func (m BuildModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return progressClosedMsg{}
		}
		return msg
	}
}

func (m BuildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressClosedMsg:
		m.done = true
		if m.summary == "" {
			m.status = "Build stopped"
		}
		return m, tea.Quit

	case pipeline.Event:
		m.apply(msg)
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m *BuildModel) apply(e pipeline.Event) {
	switch e.Kind {
	case pipeline.EventStageStarted:
		m.status = stageStatus(e.Stage, e.Count)

	case pipeline.EventModFound:
		m.found = append(m.found, ui.Colorize(e.Name, e.Color))
		m.totalFound++

	case pipeline.EventFetched:
		m.fetched = append(m.fetched, e.Name)
		m.totalFetched++

	case pipeline.EventSkipped:
		m.skipped = append(m.skipped, fmt.Sprintf("%s: %s", e.Name, e.Message))
		m.totalSkipped++

	case pipeline.EventDone:
		m.status = "Finished"
		m.summary = fmt.Sprintf("Packed %d files into %s (%d mods found, %d skipped)",
			e.Count, e.Message, m.totalFound, m.totalSkipped)
	}
}

func stageStatus(stage pipeline.Stage, count int) string {
	switch stage {
	case pipeline.StageEnrich:
		return fmt.Sprintf("Looking up %d mods...", count)
	case pipeline.StageResolve:
		return fmt.Sprintf("Resolving dependencies of %d mods...", count)
	case pipeline.StageSelect:
		return fmt.Sprintf("Choosing files for %d projects...", count)
	case pipeline.StageArchive:
		return fmt.Sprintf("Downloading %d files...", count)
	}
	return string(stage)
}

func (m BuildModel) View() string {
	var symbol string
	if m.done {
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	s := fmt.Sprintf("\n %s %s\n\n", symbol, m.status)

	if len(m.found) > 0 {
		s += lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Mods (%d):", m.totalFound)) + "\n"
		s += tail(m.found, 5, m.done)
	}

	if len(m.skipped) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("Skipped:") + "\n"
		for _, e := range m.skipped {
			s += fmt.Sprintf("  • %s\n", e)
		}
		s += "\n"
	}

	if len(m.fetched) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(fmt.Sprintf("Downloaded (%d):", m.totalFetched)) + "\n"
		s += tail(m.fetched, 5, m.done)
	}

	if m.done && m.summary != "" {
		s += lipgloss.NewStyle().Bold(true).Render(m.summary) + "\n"
	}

	return s
}

// tail renders the last n items as a bullet list, or all of them once done.
func tail(items []string, n int, all bool) string {
	start := 0
	if len(items) > n && !all {
		start = len(items) - n
	}
	var s string
	for _, item := range items[start:] {
		s += fmt.Sprintf("  • %s\n", item)
	}
	return s + "\n"
}

// runBuildTUI runs run under the progress UI and returns its outcome. Quitting
// the UI cancels the build.
func runBuildTUI(ctx context.Context, run buildFunc) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressChan := make(chan pipeline.Event, 100)
	var (
		res *pipeline.Result
		err error
	)
	go func() {
		defer close(progressChan)
		res, err = run(ctx, func(e pipeline.Event) {
			progressChan <- e
		})
	}()

	_, uiErr := tea.NewProgram(initialBuildModel(progressChan)).Run()
	cancel()
	// Unblock the build and wait for it to return.
	for range progressChan {
	}
	if uiErr != nil {
		return nil, fmt.Errorf("failed to run progress UI: %w", uiErr)
	}
	return res, err
}
