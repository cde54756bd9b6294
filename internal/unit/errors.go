package unit

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes for configuration loading failures.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Resource discovery failed
	ErrCodeParseFailed = "E004" // Resource could not be parsed
	ErrCodeInvalidUnit = "E005" // Unit declaration is structurally invalid
)

// LoadError reports a configuration source that could not be located,
// read, or parsed. Any LoadError is fatal for the load that produced it.
type LoadError struct {
	Code     string
	Resource string // path of the offending resource, if known
	Message  string
	Pos      token.Pos // CUE position if available
	Err      error
}

func (e *LoadError) Error() string {
	var msg string
	switch {
	case e.Pos.IsValid():
		msg = fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.Resource != "":
		msg = fmt.Sprintf("%s: %s: %s", e.Resource, e.Code, e.Message)
	default:
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the LoadError code from err, or "" if err is not a
// LoadError. Uses errors.As to handle wrapped errors.
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func parseError(resource string, err error) *LoadError {
	return &LoadError{Code: ErrCodeParseFailed, Resource: resource, Message: "cannot parse configuration units", Err: err}
}

func invalidUnit(resource string, index int, message string) *LoadError {
	return &LoadError{Code: ErrCodeInvalidUnit, Resource: resource, Message: fmt.Sprintf("unit %d: %s", index, message)}
}
