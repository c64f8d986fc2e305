package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/leapstack-labs/viewgen/internal/scaffold"
)

// ErrAborted is returned when the user leaves the template picker without choosing.
var ErrAborted = errors.New("template selection aborted")

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var pickerKeys = pickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c", "q"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	pickerTitle    = lipgloss.NewStyle().Bold(true)
	pickerCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	pickerMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pickerHelpLine = pickerMuted.MarginTop(1)
)

// pickerModel lets the user choose one template from the manifest.
type pickerModel struct {
	templates []scaffold.Descriptor
	cursor    int
	chosen    string
	aborted   bool
}

func newPickerModel(templates []scaffold.Descriptor) pickerModel {
	return pickerModel{templates: templates}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, pickerKeys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, pickerKeys.Down):
		if m.cursor < len(m.templates)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, pickerKeys.Select):
		if len(m.templates) > 0 {
			m.chosen = m.templates[m.cursor].ID
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen != "" || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerTitle.Render("Choose a view template"))
	b.WriteString("\n\n")
	for i, d := range m.templates {
		cursor := "  "
		name := d.ID
		if i == m.cursor {
			cursor = pickerCursor.Render("> ")
			name = pickerCursor.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, name, pickerMuted.Render(d.Description))
	}
	help := []string{}
	for _, k := range []key.Binding{pickerKeys.Up, pickerKeys.Down, pickerKeys.Select, pickerKeys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(pickerHelpLine.Render(strings.Join(help, " • ")))
	b.WriteString("\n")
	return b.String()
}

// result returns the chosen template id or ErrAborted.
func (m pickerModel) result() (string, error) {
	if m.aborted || m.chosen == "" {
		return "", ErrAborted
	}
	return m.chosen, nil
}

// pickTemplate runs the interactive picker on the given terminal streams.
func pickTemplate(in io.Reader, out io.Writer, templates []scaffold.Descriptor) (string, error) {
	p := tea.NewProgram(newPickerModel(templates), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("template picker: %w", err)
	}
	return final.(pickerModel).result()
}

// isInteractive reports whether r is a terminal the picker can read keys from.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
