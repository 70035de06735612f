package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/favorites"
)

// Searcher runs repository searches.
type Searcher interface {
	Search(ctx context.Context, query string) (*api.SearchResponse, error)
}

// FavoritesFactory creates the favorites controller for a result list.
type FavoritesFactory func(buttons ...*favorites.Button) *favorites.Controller

// searchDoneMsg carries a finished search and its reconciled favorites.
type searchDoneMsg struct {
	seq  int
	resp *api.SearchResponse
	favs *favorites.Controller
	err  error
}

// toggleDoneMsg reports a finished favorite toggle.
type toggleDoneMsg struct {
	repoID  string
	outcome favorites.Outcome
	err     error
}

type searchKeyMap struct {
	Toggle key.Binding
	Focus  key.Binding
}

var searchKeys = searchKeyMap{
	Toggle: key.NewBinding(key.WithKeys("f", " "), key.WithHelp("f", "favorite")),
	Focus:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
}

// SearchModel is the search screen: a query box above a result list whose
// rows are favorite buttons. Enter on a row selects that repository and
// quits.
type SearchModel struct {
	ctx     context.Context
	search  Searcher
	newFavs FavoritesFactory

	input textinput.Model
	spin  spinner.Model

	seq       int
	searching bool
	query     string
	matches   []api.SearchMatch
	favs      *favorites.Controller
	toggling  int
	cursor    int
	inList    bool
	status    string
	err       string
	selected  string
	height    int
}

// NewSearch creates the search screen. A non-empty query runs on start.
func NewSearch(ctx context.Context, search Searcher, newFavs FavoritesFactory, query string) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "a fast http router written in go"
	ti.Prompt = "Search: "
	ti.CharLimit = 256
	ti.Width = 60
	ti.SetValue(query)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle

	m := SearchModel{
		ctx:     ctx,
		search:  search,
		newFavs: newFavs,
		input:   ti,
		spin:    sp,
		query:   strings.TrimSpace(query),
	}
	if m.query != "" {
		m.seq = 1
		m.searching = true
		m.setList(true)
	}
	return m
}

// RunSearch shows the search screen and returns the URL of the repository
// the user picked, or "" when they quit without picking one.
func RunSearch(ctx context.Context, search Searcher, newFavs FavoritesFactory, query string) (string, error) {
	out := logger.StandardLogger().Out
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(out)

	final, err := tea.NewProgram(NewSearch(ctx, search, newFavs, query), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	return final.(SearchModel).Selected(), nil
}

// Selected returns the URL of the repository chosen with enter.
func (m SearchModel) Selected() string { return m.selected }

// Matches returns the ranked results on screen.
func (m SearchModel) Matches() []api.SearchMatch { return m.matches }

func (m SearchModel) Init() tea.Cmd {
	if !m.searching {
		return textinput.Blink
	}
	return tea.Batch(m.searchCmd(m.seq, m.query), m.spin.Tick)
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - len(m.input.Prompt) - 4
		return m, nil

	case searchDoneMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.searching = false
		if msg.err != nil {
			m.err = msg.err.Error()
			m.setList(false)
			return m, nil
		}
		m.err = ""
		m.matches = msg.resp.Matches
		m.favs = msg.favs
		m.cursor = 0
		m.status = fmt.Sprintf("%d matches for %q", len(m.matches), msg.resp.Query)
		m.setList(len(m.matches) > 0)
		return m, nil

	case toggleDoneMsg:
		if m.toggling > 0 {
			m.toggling--
		}
		switch {
		case msg.err != nil:
			m.err = msg.err.Error()
		case msg.outcome == favorites.OutcomeSigninRequired:
			m.status = "Sign in required: run `repoconvert auth login`"
		default:
			m.err = ""
			m.status = fmt.Sprintf("%s %s", m.nameOf(msg.repoID), msg.outcome)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.searching && m.toggling == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if !m.inList {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SearchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQ):
		return m, tea.Quit
	case key.Matches(msg, keys.NextPane), key.Matches(msg, keys.PrevPane):
		m.setList(!m.inList && len(m.matches) > 0)
		return m, nil
	}

	if !m.inList {
		if key.Matches(msg, keys.Submit) {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			return m.runSearch(q)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, searchKeys.Focus):
		m.setList(false)
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}
	case key.Matches(msg, searchKeys.Toggle):
		return m.toggle()
	case key.Matches(msg, keys.Submit):
		if len(m.matches) > 0 {
			m.selected = m.matches[m.cursor].HTMLURL
			return m, tea.Quit
		}
	}
	return m, nil
}

// runSearch starts a search. Results of an earlier search still in flight
// are dropped when they arrive.
func (m SearchModel) runSearch(q string) (SearchModel, tea.Cmd) {
	m.seq++
	m.searching = true
	m.query = q
	m.err = ""
	m.status = ""
	return m, tea.Batch(m.searchCmd(m.seq, q), m.spin.Tick)
}

// searchCmd searches for q and reconciles a favorite button per match.
func (m SearchModel) searchCmd(seq int, q string) tea.Cmd {
	ctx, search, newFavs := m.ctx, m.search, m.newFavs
	return func() tea.Msg {
		resp, err := search.Search(ctx, q)
		if err != nil {
			return searchDoneMsg{seq: seq, err: err}
		}
		buttons := make([]*favorites.Button, 0, len(resp.Matches))
		for _, r := range resp.Matches {
			buttons = append(buttons, favorites.NewButton(r.ID, r.Card()))
		}
		favs := newFavs(buttons...)
		favs.Initialize(ctx)
		return searchDoneMsg{seq: seq, resp: resp, favs: favs}
	}
}

func (m SearchModel) toggle() (SearchModel, tea.Cmd) {
	if len(m.matches) == 0 || m.favs == nil {
		return m, nil
	}
	m.toggling++
	ctx, favs, id := m.ctx, m.favs, m.matches[m.cursor].ID
	run := func() tea.Msg {
		outcome, err := favs.Toggle(ctx, id)
		return toggleDoneMsg{repoID: id, outcome: outcome, err: err}
	}
	return m, tea.Batch(run, m.spin.Tick)
}

func (m *SearchModel) setList(on bool) {
	m.inList = on
	if on {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

func (m SearchModel) nameOf(repoID string) string {
	for _, r := range m.matches {
		if r.ID == repoID {
			return r.FullName
		}
	}
	return repoID
}

func (m SearchModel) glyph(repoID string) string {
	if m.favs != nil {
		if b := m.favs.Button(repoID); b != nil {
			return b.State().Glyph()
		}
	}
	return favorites.ButtonState{}.Glyph()
}

func (m SearchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("repoconvert search"))
	b.WriteString("\n")
	style := focusedPaneStyle
	if m.inList {
		style = paneStyle
	}
	b.WriteString(style.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.resultList())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(strings.Join([]string{"enter search/open", "f favorite", "/ edit query", "q quit"}, " • ")))
	return b.String()
}

func (m SearchModel) statusLine() string {
	switch {
	case m.searching:
		return m.spin.View() + " Searching repositories..."
	case m.err != "":
		return errorStyle.Render("Error: " + m.err)
	case m.status != "":
		return dimStyle.Render(m.status)
	default:
		return dimStyle.Render("Describe the repository you are looking for")
	}
}

func (m SearchModel) resultList() string {
	if len(m.matches) == 0 {
		if m.query != "" && !m.searching && m.err == "" {
			return dimStyle.Render("No repositories found")
		}
		return ""
	}

	height := m.height - 10
	start, end := window(m.cursor, len(m.matches), height/2)

	var lines []string
	for i := start; i < end; i++ {
		r := m.matches[i]
		prefix := "  "
		if i == m.cursor && m.inList {
			prefix = cursorStyle.Render("> ")
		}
		head := fmt.Sprintf("%s %s  %s  ★%d  %.2f", m.glyph(r.ID), r.FullName, orDash(r.Language), r.StargazersCount, r.Similarity)
		if i == m.cursor {
			head = labelStyle.Render(head)
		}
		lines = append(lines, prefix+head, "    "+dimStyle.Render(orDash(r.Description)))
	}
	return strings.Join(lines, "\n")
}
