package compile

import "fmt"

// SyntaxError reports source that the execution model rejects.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
	Cause   error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// ExitError reports a program that ran to completion with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
