package compiler

import (
	"fmt"
	"path/filepath"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a document error with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	field := "cue"
	if path := first.Path(); len(path) > 0 {
		field = joinPath(path)
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   field,
			Message: first.Error(),
			Pos:     documentPos(positions),
		}
	}
	return &CompileError{Field: field, Message: first.Error()}
}

// documentPos prefers a position in the user's document over one in the
// embedded schema.
func documentPos(positions []token.Pos) token.Pos {
	for _, p := range positions {
		if filepath.Base(p.Filename()) != "schema.cue" {
			return p
		}
	}
	return positions[0]
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}
