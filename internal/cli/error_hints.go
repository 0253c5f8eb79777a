package cli

import (
	"github.com/vburojevic/sbsearch/internal/domain"
)

func hintFor(err error) string {
	if err == nil {
		return ""
	}

	switch domain.KindOf(err) {
	case domain.KindBundleNotFound:
		return "Pass the unpacked bundle directory with --bundle; archives must be extracted first"
	case domain.KindNoMatchingFiles:
		return "Check --resource against `sbsearch files`, or drop it to scan every file"
	case domain.KindFileRead:
		return "Check file permissions; run with --log-level debug for details"
	case domain.KindInvalidQuery:
		return "Regex queries use RE2 syntax; escape metacharacters or drop --regex for a literal search"
	case domain.KindExport:
		return "Check that the working directory is writable"
	}
	return ""
}
