package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
}

// CompileResult summarizes a compiled document.
type CompileResult struct {
	Hash        string   `json:"hash"`
	Events      []string `json:"events"`
	ActionLists []string `json:"actionLists"`
	Output      string   `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <document>",
		Short: "Compile a document to canonical JSON",
		Long: `Compile an interaction document (CUE, JSON, or YAML) into the
normalized model and write it as canonical JSON.

The model hash identifies a document independent of its source format and
key order; two documents with the same hash behave identically.

Examples:
  motion compile page.cue
  motion compile page.yaml -o page.json
  motion compile ./document-dir --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical JSON to this file")
	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := loadValidDocument(path)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	data, err := ir.MarshalCanonical(m)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to encode model", err)
	}
	hash, err := ir.ModelHash(m)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to hash model", err)
	}

	result := CompileResult{
		Hash:        hash,
		Events:      sortedKeys(m.Events),
		ActionLists: sortedKeys(m.ActionLists),
		Output:      opts.Output,
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		formatter.VerboseLog("Wrote %d bytes to %s", len(data), opts.Output)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	if opts.Output == "" {
		fmt.Fprintln(formatter.Writer, string(data))
		return nil
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d events, %d action lists\n", len(result.Events), len(result.ActionLists))
	fmt.Fprintf(formatter.Writer, "  hash: %s\n", hash)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
