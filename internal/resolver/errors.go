package resolver

import (
	"fmt"
	"strings"
)

// Resolution error codes (E101-E199).
const (
	ErrCodeUnknownExtends  = "E101" // extends reference to a missing descriptor
	ErrCodeExtendsCycle    = "E102" // cyclic extends chain
	ErrCodeInvalidCategory = "E103" // class category not in the category set
)

// ResolveError is a fatal structural error found while resolving the
// descriptor graph. Returned as a value; process exit is the caller's
// decision.
type ResolveError struct {
	Code    string
	Name    string   // descriptor being resolved
	Ref     string   // offending reference, if any
	Path    []string // extends chain for cycle errors
	Message string
}

func (e *ResolveError) Error() string {
	switch {
	case len(e.Path) > 0:
		return fmt.Sprintf("%s: %s: %s (%s)", e.Code, e.Name, e.Message, strings.Join(e.Path, " -> "))
	case e.Ref != "":
		return fmt.Sprintf("%s: %s: %s %q", e.Code, e.Name, e.Message, e.Ref)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Name, e.Message)
	}
}
