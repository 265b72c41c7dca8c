package domain

import (
	"errors"
	"fmt"
)

// ErrSchema is matched by every input shape or value violation.
var ErrSchema = errors.New("schema error")

// SchemaError describes why an input row or header was rejected.
type SchemaError struct {
	Line   int // 1-based CSV line, 0 for header or dataset-level problems
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("schema error: line %d: column %s: %s", e.Line, e.Column, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("schema error: column %s: %s", e.Column, e.Reason)
	default:
		return "schema error: " + e.Reason
	}
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
