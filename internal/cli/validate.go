package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/compiler"
	"github.com/roach88/motion/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Events      int                        `json:"events"`
	ActionLists int                        `json:"actionLists"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a document against the schema and its cross references",
		Long: `Validate an interaction document without running it.

The document is compiled against the schema, then checked for references
the schema cannot express: unknown action lists, auto-stop events,
parameter groups, breakpoints, easings, and host elements.

Exit codes:
  0 - Document is valid
  1 - Validation found problems
  2 - Document could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := loadDocument(path)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Code == ErrCodeSchema {
			// Schema errors are validation failures with a line number.
			return outputValidationErrors(formatter, nil, []compiler.ValidationError{{
				Field:   "document",
				Message: le.Message,
				Code:    le.Code,
				Line:    le.Line(),
			}})
		}
		return loadErrorExit(formatter, err)
	}

	formatter.VerboseLog("Compiled %s: %d event(s), %d action list(s)", path, len(m.Events), len(m.ActionLists))

	if errs := compiler.Validate(m); len(errs) > 0 {
		return outputValidationErrors(formatter, m, errs)
	}
	return outputValidateSuccess(formatter, m)
}

func outputValidateSuccess(formatter *OutputFormatter, m *ir.Model) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{
			Valid:       true,
			Events:      len(m.Events),
			ActionLists: len(m.ActionLists),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Document valid (%d events, %d action lists)\n", len(m.Events), len(m.ActionLists))
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, m *ir.Model, errs []compiler.ValidationError) error {
	exit := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		result := ValidationResult{Errors: errs}
		if m != nil {
			result.Events = len(m.Events)
			result.ActionLists = len(m.ActionLists)
		}
		if err := formatter.Response(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return exit
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return exit
}
