package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/vburojevic/sbsearch/internal/output"
	"github.com/vburojevic/sbsearch/internal/session"
)

// View renders the UI
func (m Model) View() string {
	switch m.state {
	case stateLoading:
		return m.spin.View() + " Loading " + m.opts.Title + "..."
	case stateFailed:
		return output.Styles.Danger.Render("Error: ") + m.err.Error() + "\n" +
			output.Styles.Help.Render("press q to quit")
	}

	var body string
	switch m.state {
	case stateConfirmSave:
		n := m.sess.Pager().Len()
		body = m.popup(fmt.Sprintf("Save %s lines to %s? (y/n)", humanize.Comma(int64(n)), m.opts.Exporter.FileName()))
	case stateConfirmQuit:
		body = m.popup("Quit sbsearch? (y/n)")
	default:
		body = m.renderBody()
	}

	return m.renderHeader() + "\n" + body + "\n" + m.renderStatus() + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	tl := m.sess.Timeline()
	title := output.Styles.Title.Render("sbsearch: " + m.opts.Title)
	info := fmt.Sprintf("%s entries | %d files", humanize.Comma(int64(tl.Len())), len(tl.Files()))
	if m.skipped > 0 {
		info += " | " + output.Styles.Warning.Render(fmt.Sprintf("%d unreadable", m.skipped))
	}
	return title + output.Styles.Help.Render(info)
}

func (m Model) renderBody() string {
	page := m.sess.PageWindow()
	h := m.bodyHeight()

	if len(page.Rows) == 0 {
		msg := "No log entries"
		if m.sess.Matches() != nil {
			msg = fmt.Sprintf("No matches for %q", m.sess.Query().Pattern)
		}
		return padLines(output.Styles.Help.Render(msg), h)
	}

	top := min(m.top, len(page.Rows))
	end := min(top+h, len(page.Rows))
	lines := make([]string, 0, h)
	for _, r := range page.Rows[top:end] {
		lines = append(lines, m.renderRow(r))
	}
	return padLines(strings.Join(lines, "\n"), h)
}

func (m Model) renderRow(r session.Row) string {
	e := r.Entry
	marker := " "
	if r.Selected {
		marker = output.Styles.Selected.Render(output.Styles.Prompt.Render(">"))
	}
	prefix := marker + " " + output.SeverityIndicator(e.Severity) + " "
	if e.Source != nil {
		prefix += output.Styles.Source.Render(e.Source.Resource) + " "
	}

	raw := strings.ReplaceAll(e.Raw, "\t", " ")
	if m.width > 0 {
		raw = truncate(raw, m.width-lipgloss.Width(prefix))
	}
	return prefix + output.Highlight(raw, r.Spans, rowStyle(e))
}

func (m Model) renderStatus() string {
	w := m.sess.Pager().Window()
	mode := output.Styles.Mode.Render(m.sess.Mode().String())

	var parts []string
	if q := m.sess.Query(); !q.Empty() {
		parts = append(parts, fmt.Sprintf("%q", q.Pattern))
	}
	flags := ""
	if m.regex {
		flags += "[regex]"
	}
	if m.caseSen {
		flags += "[case]"
	}
	if flags != "" {
		parts = append(parts, flags)
	}
	if m.sess.Pending() {
		parts = append(parts, m.spin.View()+" searching")
	}
	if e := m.sess.Selected(); e != nil {
		parts = append(parts, e.SourcePath())
	}
	pos := 0
	if w.Len > 0 {
		pos = w.Cursor + 1
	}
	parts = append(parts,
		fmt.Sprintf("%s/%s", humanize.Comma(int64(pos)), humanize.Comma(int64(w.Len))),
		fmt.Sprintf("page %d/%d", w.Page(), w.Pages()))

	line := mode + output.Styles.StatusBar.Render(strings.Join(parts, " | "))
	switch {
	case m.err != nil:
		line += " " + output.Styles.Danger.Render(m.err.Error())
	case m.status != "":
		line += " " + output.Styles.Success.Render(m.status)
	}
	return line
}

func (m Model) renderFooter() string {
	switch {
	case m.state == stateGoto:
		return m.gotoIn.View()
	case m.sess.Mode() == session.QueryEditing:
		return m.query.View()
	}
	return m.help.View(m.keys)
}

func (m Model) popup(text string) string {
	box := output.Styles.Popup.Render(text)
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func padLines(s string, h int) string {
	if n := lipgloss.Height(s); n < h {
		s += strings.Repeat("\n", h-n)
	}
	return s
}
