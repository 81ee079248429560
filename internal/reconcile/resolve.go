package reconcile

import (
	"context"

	"github.com/s22625/fwbuild/internal/model"
)

// Resolve turns a ref into its full commit SHA. Failure is fatal: an
// unresolvable ref does not become resolvable by retrying.
func (e *Engine) Resolve(ctx context.Context, ref model.Ref) (model.CommitSHA, error) {
	sha, err := e.host.ResolveCommit(ctx, ref)
	if err != nil {
		return "", newError(KindRefResolutionError, err, "cannot resolve ref %q in %s", ref, e.opts.Repo).
			withHint("check the ref name and that it has been pushed")
	}
	return sha, nil
}
