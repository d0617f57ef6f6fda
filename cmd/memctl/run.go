package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/joshuapare/halfbit/cmd/memctl/logger"
	"github.com/joshuapare/halfbit/pkg/scenario"
)

var (
	runArenaSize   int
	runFailFast    bool
	runIgnoreLeaks bool
)

// errScenariosFailed is returned when at least one scenario did not pass.
var errScenariosFailed = errors.New("scenarios failed")

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Replay scenarios and report their outcome",
		Long: `The run command replays each scenario file against the allocator it names,
checks every step against its expected outcome and audits the allocator for
overlapping blocks and leaks.

Example:
  memctl run grow.yaml
  memctl run testdata/*.yaml --fail-fast
  memctl run leak.yaml --ignore-leaks --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args)
		},
	}

	cmd.Flags().IntVar(&runArenaSize, "arena-size", 0, "Buffer size for bump and single allocators (default $MEMCTL_ARENA_SIZE)")
	cmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop each scenario at its first failed step")
	cmd.Flags().BoolVar(&runIgnoreLeaks, "ignore-leaks", false, "Do not fail scenarios that leak blocks")
	return cmd
}

// runResult is the JSON form of one scenario run.
type runResult struct {
	File   string           `json:"file"`
	Passed bool             `json:"passed"`
	Errors []string         `json:"errors,omitempty"`
	Report *scenario.Report `json:"report,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	arena := runArenaSize
	if arena == 0 {
		arena = cfg.ArenaSize
	}
	runner := scenario.NewRunner(scenario.Options{
		Logger:      logger.L,
		ArenaSize:   arena,
		FailFast:    runFailFast,
		IgnoreLeaks: runIgnoreLeaks,
	})

	results := make([]runResult, 0, len(args))
	failed := 0
	for _, path := range args {
		printVerbose("Replaying %s\n", path)

		res := runResult{File: path}
		sc, err := scenario.Load(path)
		if err == nil {
			res.Report, err = runner.Run(ctx, sc)
		}
		if err != nil {
			res.Errors = flattenErrors(err)
			failed++
			logger.Warn("scenario failed", "file", path, "errors", len(res.Errors))
		} else {
			res.Passed = true
		}
		results = append(results, res)

		if !jsonOut {
			printResult(res)
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		printInfo("\n%d passed, %d failed\n", len(args)-failed, failed)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d %w", failed, len(args), errScenariosFailed)
	}
	return nil
}

func printResult(res runResult) {
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}

	if res.Report == nil {
		printInfo("%s %s\n", status, res.File)
	} else {
		r := res.Report
		printInfo("%s %s (%s on %s): %d steps, peak %d bytes, %d live\n",
			status, res.File, r.Name, r.Allocator, len(r.Steps), r.Peak, len(r.Live))
		for _, step := range r.Steps {
			printVerbose("  #%-3d %-6s %-8s %s\n", step.Index, step.Op, step.ID, step.Result)
		}
	}
	for _, msg := range res.Errors {
		printError("%s\n", msg)
	}
}

// flattenErrors splits an aggregated error into one message per cause.
func flattenErrors(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		msgs := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
