package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/go-jni/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// samples are offered for selection before anything is typed.
var samples = []string{
	"(II)I",
	"(Ljava/lang/String;)V",
	"([IJ)[Ljava/lang/String;",
	"(Ljava/util/Map;)J",
	"(JDFSB)D",
	"[[Z",
}

type historyEntry struct {
	input string
	exp   *explanation
	err   error
}

type interactiveModel struct {
	cfg      *config.Config
	input    textinput.Model
	history  []historyEntry
	selected int
}

func newInteractiveModel(cfg *config.Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "descriptor, e.g. (ILjava/lang/String;)[J"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{cfg: cfg, input: ti, selected: -1}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
			} else {
				m.selected = len(samples) - 1
			}
			m.input.SetValue(samples[m.selected])
			m.input.CursorEnd()
			return m, nil

		case "down":
			m.selected = (m.selected + 1) % len(samples)
			m.input.SetValue(samples[m.selected])
			m.input.CursorEnd()
			return m, nil

		case "enter":
			m.submit()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) submit() {
	in := strings.TrimSpace(m.input.Value())
	if in == "" {
		return
	}
	e, err := explain(m.cfg, in)
	m.history = append(m.history, historyEntry{input: in, exp: e, err: err})
	if len(m.history) > 8 {
		m.history = m.history[len(m.history)-8:]
	}
	m.input.SetValue("")
	m.selected = -1
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Descriptor Explorer"))
	b.WriteString("\n\n")

	for _, h := range m.history {
		if h.err != nil {
			b.WriteString(descStyle.Render(h.input))
			b.WriteString("\n  ")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", h.err)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(descStyle.Render(string(h.exp.Descriptor)))
		b.WriteString("\n  source ")
		b.WriteString(typeStyle.Render(h.exp.Source))
		b.WriteString("\n  go     ")
		b.WriteString(typeStyle.Render(h.exp.Go))
		b.WriteString("\n")
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	for i, s := range samples {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + s))
		} else {
			b.WriteString("  " + s)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ samples • enter explain • esc quit"))

	return b.String()
}

func runInteractive(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
