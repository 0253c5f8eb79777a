package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/sbsearch/internal/domain"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return ts.UTC()
}

func TestParserTimestamp(t *testing.T) {
	p := NewDefault()
	mod := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "leading rfc3339 with nanoseconds",
			line: `2025-12-08T08:23:35.438311029Z 2025/12/08 08:23:35 [ERROR] error syncing 'fleet-local/local-managed-system-upgrade-controller'`,
			want: "2025-12-08T08:23:35.438311029Z",
		},
		{
			name: "embedded rfc3339",
			line: `time="2025-12-30T21:45:58Z" level=info msg="state: {installed:false firstHost:true managementURL:}"`,
			want: "2025-12-30T21:45:58Z",
		},
		{
			name: "rfc3339 with offset",
			line: `2025-12-30T22:45:58+01:00 started`,
			want: "2025-12-30T21:45:58Z",
		},
		{
			name: "rfc3339 wins over syslog prefix",
			line: `Dec 30 21:51:44.485722 isim-dev rancher-system-agent[33266]: time="2025-12-30T21:51:44Z" level=info msg="[Applyinator] Extracting image"`,
			want: "2025-12-30T21:51:44Z",
		},
		{
			name: "space separated with millis",
			line: `2025-12-30 21:58:14.266 [INFO][52211] cni-plugin/k8s.go 446: Added Mac`,
			want: "2025-12-30T21:58:14.266Z",
		},
		{
			name: "syslog takes the modification year",
			line: `Dec 30 21:51:44 isim-dev kernel: eth0 up`,
			want: "2025-12-30T21:51:44Z",
		},
		{
			name: "syslog single digit day",
			line: `Dec  3 01:02:03 isim-dev kernel: eth0 up`,
			want: "2025-12-03T01:02:03Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Timestamp(tt.line, mod)
			require.True(t, ok)
			assert.True(t, mustTime(t, tt.want).Equal(got), "got %s", got)
		})
	}

	t.Run("no timestamp", func(t *testing.T) {
		for _, line := range []string{"", "  at frame 1", "goroutine 1 [running]:", `I1230 21:58:14.297331   52196 event.go:377] Event`} {
			_, ok := p.Timestamp(line, mod)
			assert.False(t, ok, line)
		}
	})

	t.Run("syslog after new year is ambiguous", func(t *testing.T) {
		newYear := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
		_, ok := p.Timestamp("Dec 31 23:59:59 node1 kubelet: sync", newYear)
		assert.False(t, ok)
	})

	t.Run("syslog leap day outside a leap year is ambiguous", func(t *testing.T) {
		_, ok := p.Timestamp("Feb 29 10:00:00 node1 kubelet: sync", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)

		got, ok := p.Timestamp("Feb 29 10:00:00 node1 kubelet: sync", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.True(t, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC).Equal(got), "got %s", got)
	})

	t.Run("syslog without modification time is ambiguous", func(t *testing.T) {
		_, ok := p.Timestamp("Dec 31 23:59:59 node1 kubelet: sync", time.Time{})
		assert.False(t, ok)
	})

	t.Run("first matching rule decides even when it fails to parse", func(t *testing.T) {
		_, ok := p.Timestamp("2025-13-45T99:00:00Z Dec 30 21:51:44", mod)
		assert.False(t, ok)
	})
}

func TestParserSeverity(t *testing.T) {
	p := NewDefault()

	tests := []struct {
		name string
		line string
		want domain.Severity
	}{
		{"level kv info", `ts=2025-12-08T07:35:14.665Z caller=kubernetes.go:331 level=info component="discovery manager scrape"`, domain.SeverityInfo},
		{"level kv error beats message", `time="2025-12-08T07:55:50Z" level=error msg="error syncing 'fleet-local/request-x49zj'"`, domain.SeverityError},
		{"level kv debug maps to info", `level=debug msg="Prepare to encode to yaml file path"`, domain.SeverityInfo},
		{"level kv warning", `level=warning msg="Unknown flag --omitStages"`, domain.SeverityWarning},
		{"level kv info wins over error text", `level=info msg="error count is zero"`, domain.SeverityInfo},
		{"json level", `2025-12-08T07:31:53.675701835Z {"level":"warn","ts":"2025-12-08T07:31:53.675659Z","msg":"apply request took too long"}`, domain.SeverityWarning},
		{"json severity field", `{"severity":"ERROR","message":"disk full"}`, domain.SeverityError},
		{"klog error", `2025-12-08T07:27:14.834602400Z E1208 07:27:14.834539       1 job_controller.go:631] "Unhandled Error"`, domain.SeverityError},
		{"klog info", `I1230 21:58:14.297331   52196 event.go:377] Event(v1.ObjectReference{Kind:"Pod"})`, domain.SeverityInfo},
		{"err kv", `msg="sync failed" err="context deadline exceeded"`, domain.SeverityError},
		{"bracketed error", `2025/12/08 07:47:45 [error] 3099#3099: *7756 upstream prematurely closed connection`, domain.SeverityError},
		{"bracketed upper", `2025/12/08 08:23:35 [ERROR] error syncing`, domain.SeverityError},
		{"bare token", `error: boom`, domain.SeverityError},
		{"bare warn token", `WARNING: low memory`, domain.SeverityWarning},
		{"fatal token", `FATAL could not start`, domain.SeverityError},
		{"error token after info token", `2025-12-08T10:00:00Z INFO request failed with error: timeout`, domain.SeverityError},
		{"fatal token after info token", `2025-12-08T10:00:00Z info: retrying after fatal panic`, domain.SeverityError},
		{"warn token after info token", `info: disk usage warning`, domain.SeverityWarning},
		{"bare info token", `INFO listening on :8080`, domain.SeverityInfo},
		{"no marker", `starting`, domain.SeverityUnknown},
		{"continuation", `  at frame 1`, domain.SeverityUnknown},
		{"word containing marker", `errors_total 0`, domain.SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Severity(tt.line))
		})
	}
}

func TestFileParserContinuation(t *testing.T) {
	p := NewDefault()
	f := &domain.ResourceFile{ID: 3, Rel: "logs/a.log", ModTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	fp := p.ForFile(f)

	t.Run("leading untimestamped line uses the sentinel", func(t *testing.T) {
		e := fp.Next("preamble without time")
		assert.True(t, e.Continuation)
		assert.Nil(t, e.Timestamp)
		assert.True(t, e.Effective.IsZero())
		assert.Equal(t, domain.Origin{File: 3, Line: 1}, e.Origin)
	})

	anchor := fp.Next("2024-06-01T10:00:00Z starting")
	t.Run("timestamped line is an anchor", func(t *testing.T) {
		require.NotNil(t, anchor.Timestamp)
		assert.False(t, anchor.Continuation)
		assert.Equal(t, *anchor.Timestamp, anchor.Effective)
		assert.Equal(t, 2, anchor.Origin.Line)
		assert.Same(t, f, anchor.Source)
	})

	t.Run("following untimestamped lines inherit the anchor", func(t *testing.T) {
		e := fp.Next("  at frame 1\r")
		assert.True(t, e.Continuation)
		assert.Nil(t, e.Timestamp)
		assert.Equal(t, anchor.Effective, e.Effective)
		assert.Equal(t, "  at frame 1", e.Raw)
		assert.Equal(t, 3, e.Origin.Line)
	})

	t.Run("new anchor replaces the old one", func(t *testing.T) {
		next := fp.Next("2024-06-01T10:00:05Z next")
		e := fp.Next("\tcaused by: eof")
		assert.Equal(t, next.Effective, e.Effective)
	})

	t.Run("every entry has a timestamp or is a continuation", func(t *testing.T) {
		fp := p.ForFile(f)
		for _, line := range []string{"a", "2024-06-01T10:00:00Z b", "", "c", "Jan  1 00:00:00 d"} {
			e := fp.Next(line)
			assert.True(t, e.Timestamp != nil || e.Continuation, line)
		}
	})
}

func TestNewTimestampRule(t *testing.T) {
	t.Run("compiles", func(t *testing.T) {
		r, err := NewTimestampRule("bracketed", `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`, "2006-01-02 15:04:05", false)
		require.NoError(t, err)

		p := New([]TimestampRule{r}, nil)
		ts, ok := p.Timestamp("[2024-01-15 10:30:00] hello", time.Time{})
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ts)
	})

	t.Run("rejects invalid regex", func(t *testing.T) {
		_, err := NewTimestampRule("bad", `([`, "2006", false)
		assert.Error(t, err)
	})

	t.Run("rejects pattern without group", func(t *testing.T) {
		_, err := NewTimestampRule("nogroup", `\d+`, "2006", false)
		assert.Error(t, err)
	})

	t.Run("rejects empty layout", func(t *testing.T) {
		_, err := NewTimestampRule("nolayout", `(\d+)`, "", false)
		assert.Error(t, err)
	})
}
