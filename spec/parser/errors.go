package parser

import "fmt"

// ParseError describes a structural grammar violation in a specification
// document. Parse errors are fatal for the document that produced them:
// an incomplete qualification dataset must never be silently accepted.
type ParseError struct {
	// File is the document filename, if known.
	File string

	// Line is the 1-based line number of the offending line.
	Line int

	// Msg describes the violation.
	Msg string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func parseErrorf(file string, line int, format string, args ...any) *ParseError {
	return &ParseError{File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
}
