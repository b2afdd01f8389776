package loader

import "fmt"

// LoadError reports a unit whose source could not be fetched.
type LoadError struct {
	Name  string
	URL   string
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error for %s (%s): %v", e.Name, e.URL, e.Cause)
	}
	return fmt.Sprintf("load error for %s (%s)", e.Name, e.URL)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// CompileError reports fetched source that is not valid for the execution model.
type CompileError struct {
	Name  string
	URL   string
	Cause error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error for %s: %v", e.Name, e.Cause)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}
