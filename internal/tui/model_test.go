package tui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/sbsearch/internal/domain"
	"github.com/vburojevic/sbsearch/internal/search"
	"github.com/vburojevic/sbsearch/internal/session"
	"github.com/vburojevic/sbsearch/internal/timeline"
)

func testTimeline(n int) *domain.Timeline {
	f := &domain.ResourceFile{ID: 0, Rel: "logs/api/server.log", Resource: "api/server"}
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]domain.LogEntry, n)
	for i := range entries {
		ts := t0.Add(time.Duration(i) * time.Second)
		raw := fmt.Sprintf("%s INFO line %02d", ts.Format(time.RFC3339), i)
		sev := domain.SeverityInfo
		if i%5 == 0 {
			raw = fmt.Sprintf("%s ERROR line %02d failed", ts.Format(time.RFC3339), i)
			sev = domain.SeverityError
		}
		entries[i] = domain.LogEntry{
			Timestamp: &ts,
			Effective: ts,
			Severity:  sev,
			Source:    f,
			Raw:       raw,
			Origin:    domain.Origin{File: 0, Line: i + 1},
		}
	}
	return domain.NewTimeline(entries, []*domain.ResourceFile{f})
}

func newTestModel(t *testing.T, opts Options) (Model, *search.Engine) {
	t.Helper()
	eng := search.NewEngine(nil)
	t.Cleanup(eng.Close)

	opts.Title = "bundle"
	opts.PageSize = 10
	opts.Engine = eng
	opts.Exporter = &session.Exporter{Dir: t.TempDir(), Clock: clock.NewMock()}
	m := New(context.Background(), opts)
	m = update(t, m, loadedMsg{res: &timeline.Result{Timeline: testTimeline(25)}})
	return m, eng
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	nm, _ := m.Update(msg)
	return nm.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func awaitResult(t *testing.T, m Model, eng *search.Engine) Model {
	t.Helper()
	select {
	case r := <-eng.Results():
		return update(t, m, resultMsg(r))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for search result")
		return m
	}
}

func TestNavigation(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	pg := m.Session().Pager()

	m = press(t, m, "j", "j", "j")
	assert.Equal(t, 3, pg.Cursor())

	m = press(t, m, "k")
	assert.Equal(t, 2, pg.Cursor())

	m = press(t, m, "l")
	assert.Equal(t, 12, pg.Cursor())

	m = press(t, m, "right", "right")
	assert.Equal(t, 24, pg.Cursor())

	m = press(t, m, "g")
	assert.Equal(t, 0, pg.Cursor())

	m = press(t, m, "h", "left")
	assert.Equal(t, 0, pg.Cursor())

	press(t, m, "G")
	assert.Equal(t, 24, pg.Cursor())
}

func TestGotoLine(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = press(t, m, ":")
	assert.Equal(t, stateGoto, m.state)

	m = press(t, m, "7", "enter")
	assert.Equal(t, stateReady, m.state)
	assert.Equal(t, 6, m.Session().Pager().Cursor())

	t.Run("cancel keeps the cursor", func(t *testing.T) {
		m := press(t, m, ":", "1", "esc")
		assert.Equal(t, stateReady, m.state)
		assert.Equal(t, 6, m.Session().Pager().Cursor())
	})
}

func TestSearchFlow(t *testing.T) {
	m, eng := newTestModel(t, Options{})

	m = press(t, m, "j", "/")
	assert.Equal(t, session.QueryEditing, m.Session().Mode())

	// keys are typed into the query while editing
	m = press(t, m, "error", "enter")
	assert.Equal(t, session.Filtered, m.Session().Mode())
	assert.True(t, m.Session().Pending())

	m = awaitResult(t, m, eng)
	require.False(t, m.Session().Pending())
	assert.Equal(t, 5, m.Session().Matches().Len())
	assert.Equal(t, 0, m.Session().Pager().Cursor())
	assert.Equal(t, 5, m.Session().Pager().Len())

	m = press(t, m, "c")
	assert.Equal(t, session.Browsing, m.Session().Mode())
	assert.Nil(t, m.Session().Matches())
	assert.Equal(t, 25, m.Session().Pager().Len())
}

func TestSearchCancel(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = press(t, m, "/", "xyz", "esc")
	assert.Equal(t, session.Browsing, m.Session().Mode())
	assert.True(t, m.Session().Query().Empty())
}

func TestInvalidRegexKeepsEditor(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = press(t, m, "r", "/", "[", "enter")
	assert.Equal(t, session.QueryEditing, m.Session().Mode())
	require.Error(t, m.err)
	assert.ErrorIs(t, m.err, domain.ErrInvalidQuery)
}

func TestToggleResubmits(t *testing.T) {
	m, eng := newTestModel(t, Options{})

	m = press(t, m, "/", "LINE", "enter")
	m = awaitResult(t, m, eng)
	assert.Equal(t, 25, m.Session().Matches().Len())

	m = press(t, m, "i")
	assert.True(t, m.caseSen)
	assert.True(t, m.Session().Query().CaseSensitive)
	m = awaitResult(t, m, eng)
	assert.Equal(t, 0, m.Session().Matches().Len())
}

func TestInitialQuery(t *testing.T) {
	m, eng := newTestModel(t, Options{Query: domain.Query{Pattern: "failed"}})
	assert.Equal(t, session.Filtered, m.Session().Mode())
	assert.True(t, m.Session().Pending())

	m = awaitResult(t, m, eng)
	assert.Equal(t, 5, m.Session().Matches().Len())
}

func TestQuitConfirm(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = press(t, m, "q")
	assert.Equal(t, stateConfirmQuit, m.state)

	m = press(t, m, "n")
	assert.Equal(t, stateReady, m.state)

	m = press(t, m, "q")
	_, cmd := m.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	t.Run("ctrl+c quits immediately", func(t *testing.T) {
		_, cmd := m.Update(keyMsg("ctrl+c"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestSaveView(t *testing.T) {
	m, eng := newTestModel(t, Options{})

	m = press(t, m, "/", "ERROR", "enter")
	m = awaitResult(t, m, eng)

	m = press(t, m, "s")
	assert.Equal(t, stateConfirmSave, m.state)

	nm, cmd := m.Update(keyMsg("y"))
	m = nm.(Model)
	require.NotNil(t, cmd)
	msg := cmd()
	saved, ok := msg.(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	m = update(t, m, msg)
	assert.Contains(t, m.status, "saved 5 lines")

	f, err := os.Open(saved.path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, m.Session().ExportCurrentView(), lines)
}

func TestSaveDeclined(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = press(t, m, "s")
	nm, cmd := m.Update(keyMsg("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, stateReady, nm.(Model).state)
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 12})

	v := m.View()
	assert.Contains(t, v, "sbsearch: bundle")
	assert.Contains(t, v, "BROWSE")
	assert.Contains(t, v, "page 1/3")
	assert.Contains(t, v, "logs/api/server.log")

	t.Run("cursor stays visible", func(t *testing.T) {
		m := press(t, m, "j", "j", "j", "j", "j", "j", "j", "j", "j")
		assert.Contains(t, m.View(), "line 09")
	})

	t.Run("loading", func(t *testing.T) {
		m := New(context.Background(), Options{Title: "bundle"})
		assert.Contains(t, m.View(), "Loading bundle")
	})

	t.Run("failed", func(t *testing.T) {
		m := New(context.Background(), Options{Title: "bundle"})
		m = update(t, m, loadFailedMsg{err: domain.NewError(domain.KindBundleNotFound, "/nope", nil)})
		assert.Contains(t, m.View(), "/nope")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, "a", truncate("aé", 2))
}
