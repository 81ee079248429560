package reconcile

import (
	"github.com/s22625/fwbuild/internal/model"
)

// Classify buckets the runs targeting sha into running and completed,
// keeping the most recently updated run of each bucket. Ties keep the run
// seen first.
func Classify(runs model.RunSet, sha model.CommitSHA) Candidates {
	var c Candidates
	for _, r := range runs {
		if r == nil || !r.Targets(sha) {
			continue
		}
		c.Matched++
		if r.IsCompleted() {
			c.Completed = newer(c.Completed, r)
		} else {
			c.Running = newer(c.Running, r)
		}
	}
	return c
}

func newer(best, r *model.Run) *model.Run {
	if best == nil || r.UpdatedAt.After(best.UpdatedAt) {
		return r
	}
	return best
}

// Decide picks the run to reuse. A running candidate beats a completed one;
// without candidates, or when force is set, a new run must be triggered.
func Decide(c Candidates, force bool) Decision {
	switch {
	case force:
		return Decision{Trigger: true, Forced: true, Bucket: BucketNone}
	case c.Running != nil:
		return Decision{Run: c.Running, Bucket: BucketRunning}
	case c.Completed != nil:
		return Decision{Run: c.Completed, Bucket: BucketCompleted}
	default:
		return Decision{Trigger: true, Bucket: BucketNone}
	}
}
