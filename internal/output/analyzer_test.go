package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/sbsearch/internal/domain"
)

func TestAnalyzer_NormalizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "replaces hex addresses",
			input:    "Pointer at 0x7fff5fbff8c0 is invalid",
			expected: "Pointer at <addr> is invalid",
		},
		{
			name:     "replaces numbers",
			input:    "Failed after 123 attempts with code 456",
			expected: "Failed after <n> attempts with code <n>",
		},
		{
			name:     "replaces UUIDs",
			input:    "pod 12345678-1234-1234-1234-123456789abc not found",
			expected: "pod <uuid> not found",
		},
		{
			name:     "truncates long messages",
			input:    strings.Repeat("x", 150),
			expected: strings.Repeat("x", 100) + "...",
		},
		{
			name:     "trims whitespace",
			input:    "  Message with spaces  ",
			expected: "Message with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeMessage(tt.input))
		})
	}
}

func TestAnalyzer_TopErrors(t *testing.T) {
	a := NewAnalyzer()
	a.Observe(testEntry(domain.SeverityError, "dial tcp 10.0.0.1:443 refused"))
	a.Observe(testEntry(domain.SeverityError, "disk full"))
	a.Observe(testEntry(domain.SeverityError, "dial tcp 10.0.0.2:443 refused"))
	a.Observe(testEntry(domain.SeverityWarning, "slow request"))
	a.Observe(testEntry(domain.SeverityError, "oom killed"))

	top := a.TopErrors(2)
	assert.Equal(t, []string{"dial tcp <n>.<n>.<n>.<n>:<n> refused", "disk full"}, top)
	assert.Len(t, a.TopErrors(10), 3)
	assert.Empty(t, NewAnalyzer().TopErrors(5))
}

func TestEmitter(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, "ndjson", true)

	entries := []*domain.LogEntry{
		testEntry(domain.SeverityInfo, "ok"),
		testEntry(domain.SeverityError, "failed 1"),
		testEntry(domain.SeverityError, "failed 2"),
	}
	for i, e := range entries {
		em.Count(e)
		if i > 0 {
			require.NoError(t, em.Emit(i, e, nil))
		}
	}
	require.NoError(t, em.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var s domain.LogSummary
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &s))
	assert.Equal(t, "summary", s.Type)
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 2, s.ErrorCount)
	assert.Equal(t, 2, s.Returned)
	assert.True(t, s.HasErrors)
	assert.Equal(t, []string{"failed <n>"}, s.TopErrors)
}
