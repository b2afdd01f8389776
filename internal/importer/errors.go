// Package importer is the host side of resolution: it walks dotted names parent first,
// asks a finder for each, and keeps the table of imported modules.
package importer

import "fmt"

// NotFoundError reports a name that no finder serves.
type NotFoundError struct {
	Name    string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("no module named %q: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("no module named %q", e.Name)
}

// InvalidNameError reports a malformed dotted name.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid module name %q", e.Name)
}
