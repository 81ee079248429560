package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/s22625/fwbuild/internal/config"
	"github.com/s22625/fwbuild/internal/gh"
	"github.com/s22625/fwbuild/internal/git"
	"github.com/s22625/fwbuild/internal/logging"
	"github.com/s22625/fwbuild/internal/model"
	"github.com/s22625/fwbuild/internal/poll"
	"github.com/s22625/fwbuild/internal/reconcile"
	"github.com/spf13/cobra"
)

// Stubbed in tests
var (
	newHosting = func(repo string, stream io.Writer) reconcile.Hosting {
		c := gh.NewClient(repo)
		c.Stream = stream
		return c
	}
	detectRepo    = git.DetectRepo
	currentBranch = git.CurrentBranch
	getwd         = os.Getwd
)

// runBuild merges config with flags, then reconciles and prints the summary
func runBuild(ctx context.Context, cmd *cobra.Command, opts *GlobalOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if opts.Quiet && level > logging.LevelWarn {
		level = logging.LevelWarn
	}
	if logging.DebugFromEnv() {
		level = logging.LevelDebug
	}
	stderr := cmd.ErrOrStderr()
	log := logging.New(stderr, level)

	repo, ref, err := resolveTarget(cfg, log)
	if err != nil {
		return err
	}

	stream := stderr
	if opts.Quiet {
		stream = io.Discard
	}

	engine := reconcile.New(newHosting(repo, stream), reconcile.Options{
		Repo:         repo,
		Ref:          ref,
		Workflow:     cfg.Workflow,
		OutDir:       cfg.OutDir,
		Artifact:     cfg.Artifact,
		ForceTrigger: opts.ForceTrigger,
		DryRun:       opts.DryRun,
		RunLimit:     cfg.RunLimit,
		Discovery: poll.Policy{
			Interval: cfg.Discovery.Interval,
			Attempts: uint(cfg.Discovery.Attempts),
		},
		WatchInterval: cfg.Watch.Interval,
	}, log)

	if dir := config.RepoConfigDir(); dir != "" {
		log.Debugf("using repo config %s", dir)
	}
	eff := engine.Options()
	log.Debugf("repo=%s ref=%s workflow=%s out=%s artifact=%s discovery=%dx%s",
		eff.Repo, eff.Ref, eff.Workflow, eff.OutDir, eff.Artifact, eff.Discovery.Attempts, eff.Discovery.Interval)

	st, runErr := engine.Run(ctx)

	out := cmd.OutOrStdout()
	switch {
	case opts.JSON:
		if err := printJSON(out, st, opts.DryRun, runErr); err != nil {
			return err
		}
	case !opts.Quiet && runErr == nil:
		printSummary(out, st, opts.DryRun)
	}
	return runErr
}

// loadConfig layers explicitly set flags over the file and env config
func loadConfig(cmd *cobra.Command, opts *GlobalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("repo") {
		cfg.Repo = opts.Repo
	}
	if flags.Changed("ref") {
		cfg.Ref = opts.Ref
	}
	if flags.Changed("workflow") {
		cfg.Workflow = opts.Workflow
	}
	if flags.Changed("out") {
		cfg.OutDir = config.ExpandPath(opts.OutDir, "")
	}
	if flags.Changed("artifact") {
		cfg.Artifact = opts.Artifact
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveTarget fills in repo and ref from the local clone when not configured
func resolveTarget(cfg *config.Config, log *logging.Logger) (string, model.Ref, error) {
	repo := cfg.Repo
	refStr := cfg.Ref

	if repo == "" || refStr == "" {
		cwd, err := getwd()
		if err != nil {
			return "", "", fmt.Errorf("failed to get current directory: %w", err)
		}
		if repo == "" {
			repo, err = detectRepo(cwd)
			if err != nil {
				return "", "", fmt.Errorf("cannot determine repository (use --repo or set FWBUILD_REPO): %w", err)
			}
			log.Debugf("detected repository %s from origin remote", repo)
		}
		if refStr == "" {
			refStr, err = currentBranch(cwd)
			if err != nil {
				return "", "", fmt.Errorf("cannot determine ref (use --ref or set FWBUILD_REF): %w", err)
			}
			log.Debugf("using current branch %s", refStr)
		}
	}

	ref, err := model.ParseRef(refStr)
	if err != nil {
		return "", "", err
	}
	return repo, ref, nil
}
