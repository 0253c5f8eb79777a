package parser

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vburojevic/sbsearch/internal/domain"
)

// SeverityRule is one entry of the ordered severity table.
//
// A rule matches either through Pattern or, when JSONFields is set, by
// reading those fields from the first JSON object embedded in the line.
// When Pattern has a capture group the captured word is mapped through
// domain.ParseSeverity and an unknown word lets evaluation continue with
// the next rule; otherwise a match yields Severity.
type SeverityRule struct {
	Name       string
	Pattern    *regexp.Regexp
	JSONFields []string
	Severity   domain.Severity
}

// DefaultSeverityRules returns the built-in severity table, evaluated top to bottom.
func DefaultSeverityRules() []SeverityRule {
	return []SeverityRule{
		{Name: "level-kv", Pattern: regexp.MustCompile(`(?i)\blevel=["']?([a-z]+)`)},
		{Name: "level-json", JSONFields: []string{"level", "severity", "lvl"}},
		{Name: "klog", Pattern: regexp.MustCompile(`(?:^|\s)([EWIF])\d{4} \d{2}:\d{2}:\d{2}\.\d+`)},
		{Name: "err-kv", Pattern: regexp.MustCompile(`(?i)\berr=`), Severity: domain.SeverityError},
		{Name: "bracket", Pattern: regexp.MustCompile(`(?i)\[(fatal|error|warn|warning|info|debug)\]`)},
		{Name: "error-token", Pattern: regexp.MustCompile(`(?i)\b(?:fatal|panic|error)\b`), Severity: domain.SeverityError},
		{Name: "warn-token", Pattern: regexp.MustCompile(`(?i)\b(?:warn|warning)\b`), Severity: domain.SeverityWarning},
		{Name: "info-token", Pattern: regexp.MustCompile(`(?i)\binfo\b`), Severity: domain.SeverityInfo},
	}
}

// eval applies the rule to line.
func (r SeverityRule) eval(line string) (domain.Severity, bool) {
	if len(r.JSONFields) > 0 {
		return r.evalJSON(line)
	}
	if r.Pattern == nil {
		return domain.SeverityUnknown, false
	}

	m := r.Pattern.FindStringSubmatch(line)
	if m == nil {
		return domain.SeverityUnknown, false
	}
	if len(m) < 2 {
		return r.Severity, true
	}
	sev := domain.ParseSeverity(m[1])
	return sev, sev != domain.SeverityUnknown
}

func (r SeverityRule) evalJSON(line string) (domain.Severity, bool) {
	start := strings.IndexByte(line, '{')
	if start < 0 {
		return domain.SeverityUnknown, false
	}
	doc := line[start:]
	if !gjson.Valid(doc) {
		return domain.SeverityUnknown, false
	}
	for _, field := range r.JSONFields {
		v := gjson.Get(doc, field)
		if !v.Exists() || v.Type != gjson.String {
			continue
		}
		if sev := domain.ParseSeverity(v.Str); sev != domain.SeverityUnknown {
			return sev, true
		}
	}
	return domain.SeverityUnknown, false
}

// inferSeverity runs rules in order; first match wins.
func inferSeverity(rules []SeverityRule, line string) domain.Severity {
	for _, r := range rules {
		if sev, ok := r.eval(line); ok {
			return sev
		}
	}
	return domain.SeverityUnknown
}
