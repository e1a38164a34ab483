package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okono/slate/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario name filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run scripted editing scenarios against an in-memory store.

Each scenario opens a session, executes its steps through the command
layer and evaluates its assertions against the final state.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unparseable scenarios)

Examples:
  slate test ./scenarios
  slate test ./scenarios --filter "align-*"
  slate test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarios, err := harness.LoadScenarios(scenariosDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenarios", err)
	}

	result := TestResult{}
	for _, scenario := range scenarios {
		if opts.Filter != "" {
			matched, matchErr := filepath.Match(opts.Filter, scenario.Name)
			if matchErr != nil {
				return WrapExitError(ExitCommandError, "invalid filter", matchErr)
			}
			if !matched {
				continue
			}
		}

		formatter.VerboseLog("running scenario %s", scenario.Name)
		sr := ScenarioResult{Name: scenario.Name, Pass: true}

		runResult, runErr := harness.Run(scenario)
		if runErr != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, runErr.Error())
		} else {
			for _, failure := range harness.Evaluate(runResult, scenario.Assertions) {
				sr.Pass = false
				sr.Errors = append(sr.Errors, failure.Error())
			}
		}

		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Total++
		result.Scenarios = append(result.Scenarios, sr)
	}

	if err := printTestResult(formatter, result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func printTestResult(formatter *OutputFormatter, result TestResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, sr := range result.Scenarios {
		status := "PASS"
		if !sr.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s\n", status, sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(formatter.Writer, "      %s\n", e)
		}
	}
	fmt.Fprintf(formatter.Writer, "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	return nil
}
