package reconcile

import (
	"context"
	"errors"

	"github.com/s22625/fwbuild/internal/gh"
	"github.com/s22625/fwbuild/internal/model"
	"github.com/s22625/fwbuild/internal/poll"
)

// Trigger dispatches a new run of the workflow on the configured ref. The
// dispatch call does not say which run it created; see Discover.
func (e *Engine) Trigger(ctx context.Context) error {
	if err := e.host.DispatchWorkflow(ctx, e.opts.Workflow, e.opts.Ref); err != nil {
		return newError(KindDispatchError, err, "cannot dispatch %s on %s", e.opts.Workflow, e.opts.Ref).
			withHint("the workflow needs a workflow_dispatch trigger and the ref must be a branch or tag")
	}
	e.log.Infof("dispatched %s on %s", e.opts.Workflow, e.opts.Ref)
	return nil
}

// Baseline snapshots the IDs of dispatch-event runs that exist before a
// dispatch, so discovery never picks up an older run for the same commit.
// A failed listing yields an empty baseline.
func (e *Engine) Baseline(ctx context.Context) map[int64]struct{} {
	runs, err := e.host.ListRuns(ctx, e.dispatchListOptions())
	if err != nil {
		e.log.Warnf("cannot snapshot existing dispatch runs: %v", err)
		return nil
	}
	return runs.IDs()
}

// Discover polls dispatch-event runs until one targeting sha and absent from
// baseline shows up, returning it with the number of attempts made.
func (e *Engine) Discover(ctx context.Context, sha model.CommitSHA, baseline map[int64]struct{}) (*model.Run, uint, error) {
	var found *model.Run
	policy := e.opts.Discovery

	res, err := poll.Until(ctx, policy, func(ctx context.Context, attempt uint) (bool, error) {
		runs, err := e.host.ListRuns(ctx, e.dispatchListOptions())
		if err != nil {
			e.log.Debugf("discovery attempt %d: list failed: %v", attempt+1, err)
			return false, nil
		}
		for _, r := range runs {
			if !r.Targets(sha) {
				continue
			}
			if _, seen := baseline[r.ID]; seen {
				continue
			}
			found = r
			return true, nil
		}
		e.log.Debugf("discovery attempt %d/%d: run for %s not visible yet", attempt+1, policy.Attempts, sha.Short())
		return false, nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			return nil, res.Attempts, newError(KindRunDiscoveryTimeout, err,
				"dispatched run for %s did not appear within %s", sha.Short(), policy.Timeout()).
				withHint("the dispatch was accepted; check the Actions tab, the run may still start")
		}
		return nil, res.Attempts, newError(KindRunDiscoveryTimeout, err, "discovery of run for %s interrupted", sha.Short())
	}

	e.log.Infof("discovered run %d after %d attempt(s): %s", found.ID, res.Attempts, found.URL)
	return found, res.Attempts, nil
}

func (e *Engine) dispatchListOptions() gh.ListRunsOptions {
	return gh.ListRunsOptions{
		Workflow: e.opts.Workflow,
		Event:    model.EventWorkflowDispatch,
		Limit:    e.opts.RunLimit,
	}
}
