package reconcile

import (
	"context"

	"github.com/s22625/fwbuild/internal/gh"
	"github.com/s22625/fwbuild/internal/model"
)

// Locate lists recent runs of the workflow and classifies those targeting sha.
// Branch refs scope the listing to the branch; commit refs list unscoped
// since matching on the head commit happens locally either way.
func (e *Engine) Locate(ctx context.Context, ref model.Ref, sha model.CommitSHA) (Candidates, error) {
	opts := gh.ListRunsOptions{
		Workflow: e.opts.Workflow,
		Branch:   ref.Branch(),
		Limit:    e.opts.RunLimit,
	}
	runs, err := e.host.ListRuns(ctx, opts)
	if err != nil {
		return Candidates{}, newError(KindRunLocateError, err, "cannot list runs of %s", e.opts.Workflow)
	}
	e.log.Debugf("listed %d run(s) of %s (branch=%q)", len(runs), e.opts.Workflow, opts.Branch)
	return Classify(runs, sha), nil
}
