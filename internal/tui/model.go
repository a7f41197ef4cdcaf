package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/taskfetch/internal/orchestrator"
	"github.com/Iron-Ham/taskfetch/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// contentChrome is the horizontal space taken by the content box border
// and padding.
const contentChrome = 6

// Controller is the part of the orchestrator the view drives.
type Controller interface {
	State() orchestrator.State
	LoadStoredData()
	FetchTask() bool
}

// Messages

type loadMsg struct{}

type themeMsg struct {
	theme styles.ThemeName
}

// Model is the Bubble Tea model for the fetch screen.
type Model struct {
	ctrl    Controller
	styles  *styles.ThemedStyles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width    int
	quitting bool
}

// NewModel creates a model rendering ctrl's state with the named theme.
func NewModel(ctrl Controller, theme styles.ThemeName) Model {
	s := styles.NewThemedStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Spinner

	return Model{
		ctrl:    ctrl,
		styles:  s,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
}

// Init schedules loading the persisted record on the update loop.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return loadMsg{} }
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMsg:
		m.ctrl.LoadStoredData()
		return m, nil

	case dispatchMsg:
		msg.fn()
		return m, nil

	case themeMsg:
		m.styles = styles.NewThemedStyles(msg.theme)
		m.spinner.Style = m.styles.Spinner
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		// Let the tick chain end once the fetch settles.
		if !m.ctrl.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Fetch):
		if m.ctrl.FetchTask() {
			return m, m.spinner.Tick
		}
	}
	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	state := m.ctrl.State()
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Title.Render("taskfetch"))
	b.WriteString("\n")
	b.WriteString(s.Label.Render("ResponseCode: ") + s.Value.Render(state.ResponseCode))
	b.WriteString("\n")
	b.WriteString(s.Label.Render("Times Fetched: ") + s.Value.Render(strconv.Itoa(state.FetchCount)))
	b.WriteString("\n\n")

	if state.Error != "" {
		b.WriteString(s.Error.Render(m.fit(state.Error)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderButton(state.Loading))

	box := s.ContentBox
	if m.width > 4 {
		box = box.MaxWidth(m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		box.Render(b.String()),
		s.HelpBar.Render(m.help.View(m.keys)),
	)
}

// fit truncates s to the content box's inner width, adding "..." if
// truncated. Before the first WindowSizeMsg the width is unknown and s is
// returned unchanged.
func (m Model) fit(s string) string {
	inner := m.width - contentChrome
	if m.width == 0 || lipgloss.Width(s) <= inner {
		return s
	}
	if inner <= 3 {
		return "..."
	}
	return ansi.Truncate(s, inner, "...")
}

func (m Model) renderButton(loading bool) string {
	if loading {
		return m.styles.ButtonLoading.Render(fmt.Sprintf("%s Fetching", m.spinner.View()))
	}
	return m.styles.Button.Render("Fetch")
}
