// Package main is the dicktaintctl operator console: a read-only terminal
// view of the dictation engine's setup state — device profile, model
// catalog, CLI resolution and the configured trigger.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AustinKelsay/dicktaint/internal/engine"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61E3FA")).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7AA2F7")).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A9B1D6"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9ECE6A"))

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7768E"))

	markStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0AF68"))
)

type statusLoaded struct {
	payload engine.OnboardingPayload
	err     error
}

type model struct {
	eng     *engine.Engine
	payload engine.OnboardingPayload
	err     error
	loaded  bool
}

func (m model) Init() tea.Cmd {
	return m.load
}

func (m model) load() tea.Msg {
	payload, err := m.eng.GetDictationOnboarding()
	return statusLoaded{payload: payload, err: err}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.load
		}
	case statusLoaded:
		m.payload = msg.payload
		m.err = msg.err
		m.loaded = true
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("dicktaint status"))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(labelStyle.Render("Probing device and catalog…"))
		return frameStyle.Render(b.String())
	}
	if m.err != nil {
		b.WriteString(badStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return frameStyle.Render(b.String())
	}

	p := m.payload
	fmt.Fprintf(&b, "%s %s/%s, %d cores, %.1f GB RAM\n",
		labelStyle.Render("Device:"), p.Device.OS, p.Device.Architecture,
		p.Device.LogicalCPUCores, p.Device.TotalMemoryGB)

	if p.CliAvailable {
		fmt.Fprintf(&b, "%s %s (%s)\n", labelStyle.Render("CLI:"),
			okStyle.Render(p.CliPath), p.CliSource)
	} else {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("CLI:"),
			badStyle.Render("not found"))
	}

	trigger := p.Trigger
	if trigger == "" {
		trigger = "unset"
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Trigger:"), trigger)

	ready := badStyle.Render("setup incomplete")
	if p.Ready {
		ready = okStyle.Render("ready")
	}
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("State:"), ready)

	b.WriteString(modelTable(p))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("r refresh · q quit"))

	return frameStyle.Render(b.String())
}

func modelTable(p engine.OnboardingPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-26s %9s %9s  %s\n", "ID", "MODEL", "SIZE", "MIN RAM", "STATUS")
	for _, m := range p.Models {
		var marks []string
		if m.Installed {
			marks = append(marks, okStyle.Render("installed"))
		}
		if m.Recommended {
			marks = append(marks, markStyle.Render("recommended"))
		}
		if !m.LikelyRunnable {
			marks = append(marks, badStyle.Render("needs more RAM"))
		}
		if m.ID == p.SelectedModelID {
			marks = append(marks, okStyle.Render("selected"))
		}
		fmt.Fprintf(&b, "%-12s %-26s %7.2fGB %7.1fGB  %s\n",
			m.ID, m.DisplayName, m.ApproxSizeGB, m.MinRAMGB, strings.Join(marks, " "))
	}
	return b.String()
}

func main() {
	logger.SetLevel(logger.LevelSilent)

	eng := engine.New(engine.DefaultConfig())
	p := tea.NewProgram(model{eng: eng})
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "dicktaintctl: %v\n", err)
		os.Exit(1)
	}
}
