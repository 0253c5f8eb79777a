package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/sbsearch/internal/domain"
	"github.com/vburojevic/sbsearch/internal/output"
	"github.com/vburojevic/sbsearch/internal/search"
	"github.com/vburojevic/sbsearch/internal/session"
	"github.com/vburojevic/sbsearch/internal/timeline"
	"go.uber.org/zap"
)

type state int

const (
	stateLoading state = iota
	stateReady
	stateGoto
	stateConfirmSave
	stateConfirmQuit
	stateFailed
)

// LoadFunc builds the timeline. It runs outside the update loop.
type LoadFunc func(ctx context.Context) (*timeline.Result, error)

// Options configures the browser.
type Options struct {
	// Title is shown in the top line, usually the bundle root.
	Title    string
	PageSize int
	// Query is submitted as soon as the timeline is loaded. Its Regex and
	// CaseSensitive flags are the initial toggles.
	Query    domain.Query
	Load     LoadFunc
	Engine   *search.Engine
	Exporter *session.Exporter
	Logger   *zap.Logger
}

// Model represents the TUI state
type Model struct {
	ctx  context.Context
	opts Options

	keys   KeyMap
	help   help.Model
	spin   spinner.Model
	query  textinput.Model
	gotoIn textinput.Model

	sess    *session.Session
	state   state
	regex   bool
	caseSen bool
	skipped int
	top     int // first visible row within the page
	status  string
	err     error

	width  int
	height int
}

type loadedMsg struct{ res *timeline.Result }

type loadFailedMsg struct{ err error }

type resultMsg search.Result

type savedMsg struct {
	path  string
	lines int
	err   error
}

// New creates a new TUI model
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.Prompt = "/"
	ti.CharLimit = 256
	ti.Width = 60

	gi := textinput.New()
	gi.Prompt = ":"
	gi.Placeholder = "line"
	gi.CharLimit = 12
	gi.Width = 12

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		opts:    opts,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spin:    sp,
		query:   ti,
		gotoIn:  gi,
		regex:   opts.Query.Regex,
		caseSen: opts.Query.CaseSensitive,
	}
}

// Session returns the browsing session, nil until the timeline is loaded.
func (m Model) Session() *session.Session { return m.sess }

// Err returns the error shown in the status line, if any.
func (m Model) Err() error { return m.err }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		loadTimeline(m.ctx, m.opts.Load),
		waitForResult(m.opts.Engine.Results()),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scroll()

	case spinner.TickMsg:
		if m.state == stateLoading || (m.sess != nil && m.sess.Pending()) {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}

	case loadedMsg:
		return m.loaded(msg.res)

	case loadFailedMsg:
		m.state = stateFailed
		m.err = msg.err
		m.opts.Logger.Error("load failed", zap.Error(msg.err))

	case resultMsg:
		if m.sess != nil && m.sess.Apply(search.Result(msg)) {
			m.top = 0
		}
		if m.sess != nil {
			m.err = m.sess.Err()
		}
		return m, waitForResult(m.opts.Engine.Results())

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.err = nil
			m.status = "saved " + strconv.Itoa(msg.lines) + " lines to " + msg.path
		}
	}

	return m, nil
}

func (m Model) loaded(res *timeline.Result) (tea.Model, tea.Cmd) {
	m.sess = session.New(res.Timeline, m.opts.Engine, m.opts.PageSize)
	m.state = stateReady
	m.skipped = len(res.Skipped)
	for _, err := range res.Skipped {
		m.opts.Logger.Warn("file skipped", zap.Error(err))
	}
	m.opts.Logger.Info("timeline loaded",
		zap.Int("entries", res.Timeline.Len()),
		zap.Int("files", len(res.Timeline.Files())),
		zap.Int("skipped", m.skipped))

	if m.opts.Query.Empty() {
		return m, nil
	}
	m.sess.BeginSearch()
	m.query.SetValue(m.opts.Query.Pattern)
	cmd := m.submit()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.state {
	case stateLoading, stateFailed:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil

	case stateConfirmQuit:
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m, tea.Quit
		case key.Matches(msg, m.keys.No):
			m.state = stateReady
		}
		return m, nil

	case stateConfirmSave:
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.state = stateReady
			m.status = "saving..."
			return m, saveView(m.opts.Exporter, m.sess.ExportCurrentView())
		case key.Matches(msg, m.keys.No):
			m.state = stateReady
		}
		return m, nil

	case stateGoto:
		switch {
		case key.Matches(msg, m.keys.Submit):
			if n, err := strconv.Atoi(strings.TrimSpace(m.gotoIn.Value())); err == nil {
				m.sess.Pager().GotoLine(n)
			}
			m.closeGoto()
		case key.Matches(msg, m.keys.Cancel):
			m.closeGoto()
		default:
			var cmd tea.Cmd
			m.gotoIn, cmd = m.gotoIn.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.sess.Mode() == session.QueryEditing {
		switch {
		case key.Matches(msg, m.keys.Submit):
			cmd := m.submit()
			return m, cmd
		case key.Matches(msg, m.keys.Cancel):
			m.sess.Cancel()
			m.query.Blur()
			m.err = nil
			m.top = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}

	m.status = ""
	pg := m.sess.Pager()
	switch {
	case key.Matches(msg, m.keys.Up):
		pg.LineUp()
	case key.Matches(msg, m.keys.Down):
		pg.LineDown()
	case key.Matches(msg, m.keys.PrevPage):
		pg.PageLeft()
	case key.Matches(msg, m.keys.NextPage):
		pg.PageRight()
	case key.Matches(msg, m.keys.First):
		pg.JumpFirst()
	case key.Matches(msg, m.keys.Last):
		pg.JumpLast()
	case key.Matches(msg, m.keys.Search):
		m.sess.BeginSearch()
		m.query.Focus()
		m.query.CursorEnd()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Clear), key.Matches(msg, m.keys.Cancel):
		m.sess.Clear()
		m.err = nil
	case key.Matches(msg, m.keys.Regex):
		m.regex = !m.regex
		cmd := m.resubmit()
		return m, cmd
	case key.Matches(msg, m.keys.Case):
		m.caseSen = !m.caseSen
		cmd := m.resubmit()
		return m, cmd
	case key.Matches(msg, m.keys.Goto):
		m.state = stateGoto
		m.gotoIn.SetValue("")
		m.gotoIn.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Save):
		if m.opts.Exporter != nil {
			m.state = stateConfirmSave
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Quit):
		m.state = stateConfirmQuit
	}
	m.scroll()
	return m, nil
}

// submit sends the edited query. An invalid query keeps the editor open.
func (m *Model) submit() tea.Cmd {
	q := domain.Query{Pattern: m.query.Value(), Regex: m.regex, CaseSensitive: m.caseSen}
	if err := m.sess.Submit(q); err != nil {
		m.err = err
		m.query.Focus()
		return textinput.Blink
	}
	m.err = nil
	m.top = 0
	m.query.Blur()
	m.opts.Logger.Debug("query submitted",
		zap.String("pattern", q.Pattern),
		zap.Bool("regex", q.Regex),
		zap.Bool("case_sensitive", q.CaseSensitive))
	if m.sess.Pending() {
		return m.spin.Tick
	}
	return nil
}

// resubmit reapplies the active filter after a flag toggle.
func (m *Model) resubmit() tea.Cmd {
	if m.sess.Mode() != session.Filtered {
		return nil
	}
	m.query.SetValue(m.sess.Query().Pattern)
	return m.submit()
}

func (m *Model) closeGoto() {
	m.gotoIn.Blur()
	m.state = stateReady
	m.scroll()
}

// scroll keeps the cursor row inside the visible part of the page.
func (m *Model) scroll() {
	if m.sess == nil {
		return
	}
	w := m.sess.Pager().Window()
	h := m.bodyHeight()
	sel := w.Cursor - w.Start
	maxTop := max(0, (w.End-w.Start)-h)
	m.top = min(max(m.top, 0), maxTop)
	if sel < m.top {
		m.top = sel
	}
	if sel >= m.top+h {
		m.top = sel - h + 1
	}
}

// bodyHeight is the number of log rows that fit on screen.
func (m Model) bodyHeight() int {
	if m.height == 0 {
		return max(m.sess.Pager().PageSize(), 1)
	}
	footer := 1
	if m.help.ShowAll {
		footer = lipgloss.Height(m.help.View(m.keys))
	}
	return max(m.height-2-footer, 1)
}

func loadTimeline(ctx context.Context, load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		res, err := load(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{res: res}
	}
}

// waitForResult creates a command that waits for the next search result
func waitForResult(ch <-chan search.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return resultMsg(r)
	}
}

func saveView(ex *session.Exporter, lines []string) tea.Cmd {
	return func() tea.Msg {
		p, err := ex.Export(lines)
		return savedMsg{path: p, lines: len(lines), err: err}
	}
}

// rowStyle picks the base style of an entry.
func rowStyle(e *domain.LogEntry) lipgloss.Style {
	if e.Continuation {
		return output.Styles.Continuation
	}
	return output.SeverityStyle(e.Severity)
}
