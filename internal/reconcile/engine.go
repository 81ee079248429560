// Package reconcile ensures exactly one CI run exists for a commit, waits for
// it to finish and retrieves its artifact.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/s22625/fwbuild/internal/config"
	"github.com/s22625/fwbuild/internal/gh"
	"github.com/s22625/fwbuild/internal/logging"
	"github.com/s22625/fwbuild/internal/model"
	"github.com/s22625/fwbuild/internal/poll"
)

// Hosting is the remote surface the engine reconciles against
type Hosting interface {
	CheckInstalled() error
	CheckAuth(ctx context.Context) error
	ResolveCommit(ctx context.Context, ref model.Ref) (model.CommitSHA, error)
	ListRuns(ctx context.Context, opts gh.ListRunsOptions) (model.RunSet, error)
	ViewRun(ctx context.Context, runID int64) (*model.Run, error)
	DispatchWorkflow(ctx context.Context, workflow string, ref model.Ref) error
	WatchRun(ctx context.Context, runID int64, interval time.Duration) error
	RunLogs(ctx context.Context, runID int64, failedOnly bool) (string, error)
	DownloadArtifact(ctx context.Context, runID int64, name, dir string) error
	DownloadAllArtifacts(ctx context.Context, runID int64, dir string) error
	ListArtifacts(ctx context.Context, runID int64) ([]model.Artifact, error)
}

// Options configures one reconciliation
type Options struct {
	Repo         string
	Ref          model.Ref
	Workflow     string
	OutDir       string
	Artifact     string
	ForceTrigger bool
	DryRun       bool

	RunLimit      int
	Discovery     poll.Policy
	WatchInterval time.Duration
}

func (o *Options) applyDefaults() {
	if o.Workflow == "" {
		o.Workflow = config.DefaultWorkflow
	}
	if o.OutDir == "" {
		o.OutDir = config.DefaultOutDir
	}
	if o.Artifact == "" {
		o.Artifact = config.DefaultArtifact
	}
	if o.RunLimit <= 0 {
		o.RunLimit = config.DefaultRunLimit
	}
	if o.Discovery.Attempts == 0 {
		o.Discovery.Attempts = config.DefaultDiscoveryAttempts
	}
	if o.Discovery.Interval <= 0 {
		o.Discovery.Interval = config.DefaultDiscoveryInterval
	}
	if o.WatchInterval <= 0 {
		o.WatchInterval = config.DefaultWatchInterval
	}
}

// Engine runs the reconciliation pipeline against a Hosting implementation
type Engine struct {
	host Hosting
	opts Options
	log  *logging.Logger
}

// New creates an engine. A nil logger discards output.
func New(host Hosting, opts Options, log *logging.Logger) *Engine {
	opts.applyDefaults()
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{host: host, opts: opts, log: log}
}

// Options returns the effective options after defaults
func (e *Engine) Options() Options {
	return e.opts
}

// Run executes the full pipeline. The returned state reflects every step that
// completed, and is non-nil even when err is set.
func (e *Engine) Run(ctx context.Context) (*State, error) {
	st := &State{
		Repo:     e.opts.Repo,
		Workflow: e.opts.Workflow,
		Ref:      e.opts.Ref,
		Bucket:   BucketNone,
	}

	if err := e.Preflight(ctx); err != nil {
		return st, err
	}

	sha, err := e.Resolve(ctx, e.opts.Ref)
	if err != nil {
		return st, err
	}
	st.SHA = sha
	e.log.Infof("%s resolves to %s", e.opts.Ref, sha)

	cands, err := e.Locate(ctx, e.opts.Ref, sha)
	if err != nil {
		return st, err
	}
	st.Decision = Decide(cands, e.opts.ForceTrigger)
	e.logDecision(st.Decision, cands)

	if e.opts.DryRun {
		if !st.Decision.Trigger {
			st.Run = st.Decision.Run
			st.Reused = true
			st.Bucket = st.Decision.Bucket
		}
		return st, nil
	}

	if st.Decision.Trigger {
		baseline := e.Baseline(ctx)
		if err := e.Trigger(ctx); err != nil {
			return st, err
		}
		st.Dispatched = true

		run, attempts, err := e.Discover(ctx, sha, baseline)
		st.DiscoveryAttempts = attempts
		if err != nil {
			return st, err
		}
		st.Run = run
	} else {
		st.Run = st.Decision.Run
		st.Reused = true
		st.Bucket = st.Decision.Bucket
	}

	run, err := e.Watch(ctx, st.Run)
	if run != nil {
		st.Run = run
	}
	if err != nil {
		return st, err
	}

	conclusion, _ := st.Run.Outcome()
	st.Conclusion = conclusion
	if err := e.Conclude(ctx, st.Run); err != nil {
		return st, err
	}

	res, err := e.Fetch(ctx, st.Run)
	if err != nil {
		return st, err
	}
	st.Artifact = res
	return st, nil
}

// Preflight checks that gh is installed and authenticated before any API call
func (e *Engine) Preflight(ctx context.Context) error {
	if err := e.host.CheckInstalled(); err != nil {
		return newError(KindToolMissing, err, "gh CLI is required").
			withHint("install it from https://cli.github.com")
	}
	if err := e.host.CheckAuth(ctx); err != nil {
		return newError(KindAuthError, err, "gh CLI is not authenticated").
			withHint("run `gh auth login`")
	}
	return nil
}

func (e *Engine) logDecision(d Decision, c Candidates) {
	e.log.Debugf("%d run(s) target this commit (running=%v completed=%v)", c.Matched, c.Running != nil, c.Completed != nil)
	switch {
	case d.Forced:
		e.log.Infof("force trigger set, dispatching a new run")
	case d.Trigger:
		e.log.Infof("no existing run for this commit, dispatching a new run")
	default:
		e.log.Infof("reusing %s run %d (%s)", d.Bucket, d.Run.ID, runLabel(d.Run))
	}
}

func runLabel(r *model.Run) string {
	if c, ok := r.Outcome(); ok {
		return fmt.Sprintf("completed/%s", c)
	}
	return string(r.Status)
}
