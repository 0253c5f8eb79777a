package cli

import "github.com/vburojevic/sbsearch/internal/domain"

// CLIError is a structured error used for consistent NDJSON/text emission.
type CLIError struct {
	Code    string
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// newCLIError classifies err by its domain kind.
func newCLIError(err error) *CLIError {
	code := string(domain.KindOf(err))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	return &CLIError{Code: code, Message: err.Error(), Hint: hintFor(err)}
}
