package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/s22625/fwbuild/internal/config"
	"github.com/s22625/fwbuild/internal/logging"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// GlobalOptions holds the flags of the fwbuild command
type GlobalOptions struct {
	Repo         string
	Ref          string
	Workflow     string
	OutDir       string
	Artifact     string
	ForceTrigger bool
	DryRun       bool
	JSON         bool
	Quiet        bool
	LogLevel     string
}

var globalOpts = &GlobalOptions{}

// usageError marks invalid command-line input
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fwbuild",
		Short: "Build firmware on GitHub Actions and download the artifact",
		Long: `fwbuild makes sure exactly one GitHub Actions run exists for a commit,
waits for it to finish and downloads its firmware artifact.

A run that already targets the resolved commit is reused, preferring one
that is still in progress. Otherwise the workflow is dispatched and the new
run is discovered by polling. All remote calls go through the gh CLI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return newUsageError("unexpected argument %q (fwbuild takes flags only)", args[0])
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := logging.ParseLevel(globalOpts.LogLevel); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, globalOpts)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&globalOpts.Repo, "repo", "r", "", "Repository owner/name (default: origin remote)")
	flags.StringVarP(&globalOpts.Ref, "ref", "b", "", "Branch or commit to build (default: current branch)")
	flags.StringVarP(&globalOpts.Workflow, "workflow", "w", config.DefaultWorkflow, "Workflow file name or ID")
	flags.StringVarP(&globalOpts.OutDir, "out", "o", config.DefaultOutDir, "Artifact output directory")
	flags.BoolVarP(&globalOpts.ForceTrigger, "force-trigger", "f", false, "Dispatch a new run even if one exists for the commit")
	flags.StringVarP(&globalOpts.Artifact, "artifact", "a", config.DefaultArtifact, "Artifact name to download")
	flags.BoolVar(&globalOpts.DryRun, "dry-run", false, "Resolve and decide only, do not dispatch, watch or download")
	flags.BoolVar(&globalOpts.JSON, "json", false, "Print the reconciliation summary as JSON")
	flags.BoolVar(&globalOpts.Quiet, "quiet", false, "Suppress progress output")
	flags.StringVar(&globalOpts.LogLevel, "log-level", config.DefaultLogLevel, "Log level (error|warn|info|debug)")

	return cmd
}

// Execute runs the root command and exits with its status
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes fwbuild with args and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	*globalOpts = GlobalOptions{}

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		logging.New(stderr, logging.LevelError).Errorf("%v", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var uerr *usageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	return ExitFailure
}
