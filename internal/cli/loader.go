package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/motion/internal/compiler"
	"github.com/roach88/motion/internal/ir"
)

// Error codes shared by every command. Document validation codes
// (E1xx) come from the compiler.
const (
	ErrCodeGeneric      = "E001" // unclassified failure
	ErrCodeNotFound     = "E002" // path not found
	ErrCodeFormat       = "E003" // unsupported document format
	ErrCodeSchema       = "E004" // document does not satisfy the schema
	ErrCodeInvalid      = "E005" // document failed semantic validation
	ErrCodeWriteFailed  = "E006" // output file not written
	ErrCodeJournal      = "E007" // journal missing or unreadable
	ErrCodeUnknownEvent = "E008" // event or action list not in the document
	ErrCodeTransport    = "E009" // broker or server unreachable
)

// LoadError is a document that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the source line, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// loadDocument compiles a document file or CUE directory. Compile failures
// come back as *LoadError; semantic validation is left to the caller.
func loadDocument(path string) (*ir.Model, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	m, err := compiler.Load(path)
	if err != nil {
		return nil, toLoadError(err)
	}
	return m, nil
}

// loadValidDocument loads a document and rejects it when validation
// reports anything.
func loadValidDocument(path string) (*ir.Model, error) {
	m, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	if errs := compiler.Validate(m); len(errs) > 0 {
		return nil, &LoadError{
			Code:    ErrCodeInvalid,
			Message: fmt.Sprintf("%d validation error(s), first: %s", len(errs), errs[0].Error()),
		}
	}
	return m, nil
}

func toLoadError(err error) *LoadError {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		code := ErrCodeSchema
		if ce.Field == "file" {
			code = ErrCodeFormat
		}
		return &LoadError{Code: code, Message: fmt.Sprintf("%s: %s", ce.Field, ce.Message), Pos: ce.Pos}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// loadErrorExit reports a load failure through the formatter and returns
// the command error.
func loadErrorExit(f *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		le = &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	_ = f.Error(le.Code, le.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load document", err)
}

// findFiles walks dir for files with one of exts, skipping golden
// directories.
func findFiles(dir string, exts ...string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, want := range exts {
			if ext == want {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files, err
}
