package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okono/slate/internal/schema"
)

// ValidateResult holds the validation outcome for one document.
type ValidateResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Findings []string `json:"findings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.json>",
		Short: "Validate a canvas document",
		Long: `Validate a canvas document file against the document schema.

Checks structural constraints (shape types, required fields, group
member minimums) and referential integrity (duplicate ids, dangling
group members, membership cycles).

Exit codes:
  0 - Document is valid
  1 - Document has validation findings
  2 - Command error (file unreadable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		formatter.Error("READ_ERROR", fmt.Sprintf("cannot read document: %v", err), nil)
		return WrapExitError(ExitCommandError, "read document", err)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "load schema", err)
	}

	findings := validator.ValidateBytes(data)
	result := ValidateResult{File: path, Valid: len(findings) == 0}
	for _, f := range findings {
		result.Findings = append(result.Findings, f.Error())
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Fprintf(formatter.Writer, "%s: valid\n", path)
		} else {
			fmt.Fprintf(formatter.Writer, "%s: %d finding(s)\n", path, len(result.Findings))
			for _, f := range result.Findings {
				fmt.Fprintf(formatter.Writer, "  %s\n", f)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation finding(s)", len(result.Findings)))
	}
	return nil
}
