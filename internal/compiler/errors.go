package compiler

import "fmt"

// DocumentError reports a malformed field in a definition document.
type DocumentError struct {
	Field  string // dotted path, e.g. "transitions.S.ab"
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}
