// Package tui is an interactive terminal front end for the repository
// explorer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/explorer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true).
			MarginBottom(1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	selectedFileStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// opDoneMsg reports that a controller operation returned.
type opDoneMsg struct {
	op  string
	err error
}

// exploreMsg asks the model to explore a repository, as if it was typed
// into the URL pane.
type exploreMsg struct{ url string }

// Model is the bubbletea model of the explorer screen. Operations run as
// commands against the shared controller; the model re-reads the
// controller's View after each one and on every spinner tick.
type Model struct {
	ctx  context.Context
	ctrl *explorer.Controller

	input     textinput.Model
	source    viewport.Model
	converted viewport.Model
	spin      spinner.Model

	initialURL     string
	view           explorer.View
	shownSource    string
	shownConverted string
	pending        int
	focus          Pane
	cursor         int
	targetIdx      int
	width          int
	height         int
}

// New creates the model. target preselects a conversion language and falls
// back to the first offered one.
func New(ctx context.Context, ctrl *explorer.Controller, target string) Model {
	ti := textinput.New()
	ti.Placeholder = "https://github.com/owner/repo"
	ti.Prompt = "Repository: "
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle

	idx := 0
	for i, l := range explorer.TargetLanguages {
		if l == target {
			idx = i
		}
	}

	return Model{
		ctx:       ctx,
		ctrl:      ctrl,
		input:     ti,
		source:    viewport.New(60, 10),
		converted: viewport.New(60, 10),
		spin:      sp,
		view:      ctrl.View(),
		targetIdx: idx,
	}
}

// WithRepository makes the model explore repoURL as soon as it starts.
func (m Model) WithRepository(repoURL string) Model {
	m.initialURL = repoURL
	m.input.SetValue(repoURL)
	return m
}

// Run starts the full-screen program and blocks until the user quits. A
// non-empty repoURL is explored right away. Log output is muted while the
// screen is up; failures show in the status line instead.
func Run(ctx context.Context, ctrl *explorer.Controller, target, repoURL string) error {
	out := logger.StandardLogger().Out
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(out)

	m := New(ctx, ctrl, target).WithRepository(repoURL)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Target returns the currently selected conversion language.
func (m Model) Target() string { return explorer.TargetLanguages[m.targetIdx] }

// Focus returns the focused pane.
func (m Model) Focus() Pane { return m.focus }

func (m Model) Init() tea.Cmd {
	if m.initialURL == "" {
		return textinput.Blink
	}
	url := m.initialURL
	return tea.Batch(textinput.Blink, func() tea.Msg { return exploreMsg{url: url} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case opDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.refresh()
		if msg.op == "explore" && msg.err == nil {
			m.cursor = 0
			m.setFocus(PaneFiles)
		}
		return m, nil

	case exploreMsg:
		return m.explore(msg.url)

	case spinner.TickMsg:
		m.refresh()
		if !m.view.Loading && m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQ):
		return m, tea.Quit
	case key.Matches(msg, keys.NextPane):
		m.setFocus((m.focus + 1) % numPanes)
		return m, nil
	case key.Matches(msg, keys.PrevPane):
		m.setFocus((m.focus + numPanes - 1) % numPanes)
		return m, nil
	}

	if m.focus == PaneURL {
		if key.Matches(msg, keys.Submit) {
			return m.explore(m.input.Value())
		}
		return m.updateFocused(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextLang):
		m.targetIdx = (m.targetIdx + 1) % len(explorer.TargetLanguages)
		return m, nil
	case key.Matches(msg, keys.PrevLang):
		m.targetIdx = (m.targetIdx + len(explorer.TargetLanguages) - 1) % len(explorer.TargetLanguages)
		return m, nil
	case key.Matches(msg, keys.Convert):
		if !m.view.ConvertVisible {
			return m, nil
		}
		target := m.Target()
		return m.start("convert", func(ctx context.Context) error {
			return m.ctrl.Convert(ctx, target)
		})
	}

	if m.focus == PaneFiles {
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.view.Files)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, keys.Submit):
			if len(m.view.Files) == 0 {
				return m, nil
			}
			path := m.view.Files[m.cursor].Path
			return m.start("fetch", func(ctx context.Context) error {
				return m.ctrl.FetchFile(ctx, path)
			})
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) explore(url string) (Model, tea.Cmd) {
	return m.start("explore", func(ctx context.Context) error {
		return m.ctrl.Explore(ctx, url)
	})
}

// start runs op in the background and ticks the spinner until it ends.
func (m Model) start(name string, op func(context.Context) error) (Model, tea.Cmd) {
	m.pending++
	ctx := m.ctx
	run := func() tea.Msg {
		err := op(ctx)
		if errors.Is(err, explorer.ErrSuperseded) {
			err = nil
		}
		return opDoneMsg{op: name, err: err}
	}
	return m, tea.Batch(run, m.spin.Tick)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case PaneURL:
		m.input, cmd = m.input.Update(msg)
	case PaneSource:
		m.source, cmd = m.source.Update(msg)
	case PaneConverted:
		m.converted, cmd = m.converted.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(p Pane) {
	m.focus = p
	if p == PaneURL {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// refresh copies the controller projection into the model.
func (m *Model) refresh() {
	m.view = m.ctrl.View()
	if m.cursor >= len(m.view.Files) {
		m.cursor = 0
	}
	if m.view.Source != m.shownSource {
		m.shownSource = m.view.Source
		m.source.SetContent(m.shownSource)
		m.source.GotoTop()
	}
	if m.view.Converted != m.shownConverted {
		m.shownConverted = m.view.Converted
		m.converted.SetContent(m.shownConverted)
		m.converted.GotoTop()
	}
}

func (m *Model) resize() {
	listWidth := m.width / 4
	codeWidth := m.width - listWidth - 8
	paneHeight := (m.height - 10) / 2
	if codeWidth < 20 {
		codeWidth = 20
	}
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.source.Width, m.source.Height = codeWidth, paneHeight
	m.converted.Width, m.converted.Height = codeWidth, paneHeight
	m.input.Width = m.width - len(m.input.Prompt) - 4
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("repoconvert explorer"))
	b.WriteString("\n")
	b.WriteString(m.paneStyle(PaneURL).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	code := lipgloss.JoinVertical(lipgloss.Left,
		m.paneStyle(PaneSource).Render(labelStyle.Render(orDash(m.view.SourceLabel))+"\n"+m.source.View()),
		m.paneStyle(PaneConverted).Render(labelStyle.Render(orDash(m.view.TargetLabel))+"\n"+m.converted.View()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.paneStyle(PaneFiles).Render(m.fileList()), code))
	b.WriteString("\n")
	b.WriteString(m.help())
	return b.String()
}

func (m Model) paneStyle(p Pane) lipgloss.Style {
	if m.focus == p {
		return focusedPaneStyle
	}
	return paneStyle
}

func (m Model) statusLine() string {
	switch {
	case m.view.Loading:
		return m.spin.View() + " " + m.view.LoadingMessage
	case m.view.Error != "":
		return errorStyle.Render("Error: " + m.view.Error)
	case m.view.RepoURL != "":
		return dimStyle.Render(m.view.RepoURL)
	default:
		return dimStyle.Render("Enter a GitHub repository URL")
	}
}

func (m Model) fileList() string {
	if m.view.Placeholder != "" {
		return dimStyle.Render(m.view.Placeholder)
	}
	if len(m.view.Files) == 0 {
		return dimStyle.Render("No repository explored")
	}

	height := m.source.Height*2 + 2
	start, end := window(m.cursor, len(m.view.Files), height)

	var lines []string
	for i := start; i < end; i++ {
		f := m.view.Files[i]
		line := "  " + f.Path
		if f.Selected {
			line = selectedFileStyle.Render("● " + f.Path)
		}
		if i == m.cursor && m.focus == PaneFiles {
			line = cursorStyle.Render("> ") + strings.TrimLeft(line, " ")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// window returns the visible slice bounds keeping cursor in view.
func window(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

func (m Model) help() string {
	parts := []string{"tab pane", "enter explore/open", "q quit"}
	if m.view.ConvertVisible {
		parts = append(parts, fmt.Sprintf("c convert to %s", m.Target()), "[ ] language")
	}
	return dimStyle.Render(strings.Join(parts, " • "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
