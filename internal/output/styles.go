package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/sbsearch/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Severity styles
	Unknown lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Component styles
	Timestamp    lipgloss.Style
	Source       lipgloss.Style
	Continuation lipgloss.Style
	Match        lipgloss.Style

	// Summary styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Danger  lipgloss.Style

	// TUI styles
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Mode      lipgloss.Style
	Selected  lipgloss.Style
	Help      lipgloss.Style
	Popup     lipgloss.Style
	Prompt    lipgloss.Style
}{
	Unknown: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),            // White
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),             // Cyan
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),            // Orange
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red bold

	Timestamp:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Source:       lipgloss.NewStyle().Foreground(lipgloss.Color("142")),
	Continuation: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	Match:        lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("16")).Bold(true),

	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
	Mode:      lipgloss.NewStyle().Background(lipgloss.Color("39")).Foreground(lipgloss.Color("16")).Bold(true).Padding(0, 1),
	Selected:  lipgloss.NewStyle().Background(lipgloss.Color("236")),
	Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Popup:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(1, 3),
	Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
}

// SeverityStyle returns the style for a severity
func SeverityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityInfo:
		return Styles.Info
	case domain.SeverityWarning:
		return Styles.Warning
	case domain.SeverityError:
		return Styles.Error
	default:
		return Styles.Unknown
	}
}

// SeverityIndicator returns a styled three-letter severity tag
func SeverityIndicator(s domain.Severity) string {
	style := SeverityStyle(s)
	switch s {
	case domain.SeverityInfo:
		return style.Render("INF")
	case domain.SeverityWarning:
		return style.Render("WRN")
	case domain.SeverityError:
		return style.Render("ERR")
	default:
		return style.Render("---")
	}
}

// StatusText returns styled status text
func StatusText(hasErrors bool) string {
	if hasErrors {
		return Styles.Danger.Render("ERRORS PRESENT")
	}
	return Styles.Success.Render("OK")
}

// Highlight renders raw with base, drawing the byte ranges in spans with
// the match style. Spans must be sorted and non-overlapping.
func Highlight(raw string, spans []domain.Span, base lipgloss.Style) string {
	if len(spans) == 0 {
		return base.Render(raw)
	}

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		start, end := clampSpan(sp, pos, len(raw))
		if start > pos {
			b.WriteString(base.Render(raw[pos:start]))
		}
		if end > start {
			b.WriteString(Styles.Match.Render(raw[start:end]))
		}
		pos = max(pos, end)
	}
	if pos < len(raw) {
		b.WriteString(base.Render(raw[pos:]))
	}
	return b.String()
}

func clampSpan(sp domain.Span, lo, hi int) (int, int) {
	start := max(lo, min(sp.Start, hi))
	end := max(start, min(sp.End, hi))
	return start, end
}
