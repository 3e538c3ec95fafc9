// Package viewer is the terminal reader for a single cached article.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lysyi3m/navireader/app/store"
)

// ArticleStore is the part of the store the viewer needs.
type ArticleStore interface {
	GetByID(id string) (*store.Article, error)
	MarkRead(id string) error
	ToggleStar(id string) (bool, error)
}

type Options struct {
	NotesDir string
}

type starToggledMsg struct {
	starred bool
}

type noteCreatedMsg struct {
	path   string
	opened bool
}

type errMsg struct {
	err error
}

type Model struct {
	store   ArticleStore
	article store.Article
	opts    Options
	now     func() time.Time

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	status      string
	statusError bool
}

func NewModel(st ArticleStore, article store.Article, opts Options) *Model {
	return &Model{
		store:   st,
		article: article,
		opts:    opts,
		now:     time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		m.statusError = false
		return m.handleKey(msg)

	case starToggledMsg:
		m.article.Starred = msg.starred
		if msg.starred {
			m.status = "Starred"
		} else {
			m.status = "Unstarred"
		}
		m.layout()
		return m, nil

	case noteCreatedMsg:
		m.status = "Note created: " + msg.path
		if msg.opened {
			m.status += " (opened in nvim)"
		}
		return m, nil

	case errMsg:
		m.status = msg.err.Error()
		m.statusError = true
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "pgdown", " ":
		m.viewport.ViewDown()
	case "pgup":
		m.viewport.ViewUp()
	case "g", "home":
		m.viewport.GotoTop()
	case "G", "end":
		m.viewport.GotoBottom()
	case "s":
		return m, m.toggleStarCmd()
	case "o":
		return m, openBrowserCmd(m.article.Link)
	case "n":
		return m, m.createNoteCmd()
	}

	return m, nil
}

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.article, m.width),
		m.viewport.View(),
		renderFooter(m.status, m.statusError, m.viewport.ScrollPercent(), m.width),
	)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	if !m.ready {
		m.viewport = viewport.New(width, 0)
		m.ready = true
	}
	m.layout()
}

// layout sizes the viewport to whatever the header and footer leave over.
func (m *Model) layout() {
	if !m.ready {
		return
	}

	headerHeight := lipgloss.Height(renderHeader(m.article, m.width))
	footerHeight := 1

	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-headerHeight-footerHeight)
	m.viewport.SetContent(renderBody(m.article, m.width))
}

func (m *Model) toggleStarCmd() tea.Cmd {
	st := m.store
	id := m.article.ID
	return func() tea.Msg {
		starred, err := st.ToggleStar(id)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to toggle star: %w", err)}
		}
		return starToggledMsg{starred: starred}
	}
}

func (m *Model) createNoteCmd() tea.Cmd {
	article := m.article
	dir := m.opts.NotesDir
	now := m.now()
	return func() tea.Msg {
		path, err := CreateNote(dir, article, now)
		if err != nil {
			return errMsg{err: err}
		}

		opened, err := OpenInEditor(path)
		if err != nil {
			slog.Warn("Failed to open note in editor", "path", path, "error", err)
		}
		return noteCreatedMsg{path: path, opened: opened}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := OpenURL(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// Run shows the article with id until the user quits. Opening an article
// marks it read.
func Run(st ArticleStore, id string, opts Options) error {
	article, err := st.GetByID(id)
	if err != nil {
		return fmt.Errorf("failed to load article: %w", err)
	}
	if article == nil {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	if !article.Read {
		if err := st.MarkRead(id); err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Warn("Failed to mark article read", "id", id, "error", err)
		} else {
			article.Read = true
		}
	}

	p := tea.NewProgram(NewModel(st, *article, opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
