// Package parser turns raw log lines into structured entries: timestamp
// extraction against an ordered rule list, severity inference, and
// continuation tracking within a single file.
package parser

import (
	"strings"
	"time"

	"github.com/vburojevic/sbsearch/internal/domain"
)

// Parser holds the ordered timestamp and severity rules. It has no mutable
// state and is safe for concurrent use.
type Parser struct {
	timestamps []TimestampRule
	severities []SeverityRule
}

// New creates a parser with the given rules. Nil slices select the defaults.
func New(timestamps []TimestampRule, severities []SeverityRule) *Parser {
	if timestamps == nil {
		timestamps = DefaultTimestampRules()
	}
	if severities == nil {
		severities = DefaultSeverityRules()
	}
	return &Parser{timestamps: timestamps, severities: severities}
}

// NewDefault creates a parser with the built-in rules.
func NewDefault() *Parser {
	return New(nil, nil)
}

// Context is what the parser knows about a line's surroundings
type Context struct {
	File *domain.ResourceFile
	Line int // 1-based
	// Anchor is the timestamp of the previous timestamped entry in the same
	// file, nil when there is none yet.
	Anchor *time.Time
}

// Parse converts one raw line into a LogEntry. Lines without a recognised
// timestamp become continuations of ctx.Anchor.
func (p *Parser) Parse(raw string, ctx Context) domain.LogEntry {
	raw = strings.TrimSuffix(raw, "\r")

	entry := domain.LogEntry{
		Severity: inferSeverity(p.severities, raw),
		Source:   ctx.File,
		Raw:      raw,
	}
	if ctx.File != nil {
		entry.Origin.File = ctx.File.ID
	}
	entry.Origin.Line = ctx.Line

	if ts, ok := p.Timestamp(raw, modTime(ctx.File)); ok {
		entry.Timestamp = &ts
		entry.Effective = ts
		return entry
	}

	entry.Continuation = true
	if ctx.Anchor != nil {
		entry.Effective = *ctx.Anchor
	}
	return entry
}

// Timestamp extracts the timestamp of raw using the first rule whose pattern
// matches. A line is matched by at most one rule.
func (p *Parser) Timestamp(raw string, modTime time.Time) (time.Time, bool) {
	for _, r := range p.timestamps {
		ts, matched, ok := r.match(raw, modTime)
		if matched {
			return ts, ok
		}
	}
	return time.Time{}, false
}

// Severity infers the severity of raw.
func (p *Parser) Severity(raw string) domain.Severity {
	return inferSeverity(p.severities, raw)
}

// FileParser parses the lines of one file in order, carrying the anchor of
// continuation lines. One FileParser must never be shared across files.
type FileParser struct {
	parser *Parser
	file   *domain.ResourceFile
	line   int
	anchor *time.Time
}

// ForFile returns a FileParser for f.
func (p *Parser) ForFile(f *domain.ResourceFile) *FileParser {
	return &FileParser{parser: p, file: f}
}

// Next parses the next line of the file.
func (fp *FileParser) Next(raw string) domain.LogEntry {
	fp.line++
	entry := fp.parser.Parse(raw, Context{File: fp.file, Line: fp.line, Anchor: fp.anchor})
	if entry.Timestamp != nil {
		fp.anchor = entry.Timestamp
	}
	return entry
}

func modTime(f *domain.ResourceFile) time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.ModTime
}
