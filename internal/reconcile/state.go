package reconcile

import (
	"github.com/s22625/fwbuild/internal/model"
)

// Bucket names the candidate class a reused run was taken from
type Bucket string

const (
	BucketNone      Bucket = "none"
	BucketRunning   Bucket = "running"
	BucketCompleted Bucket = "completed"
)

// Candidates holds the best reusable run per bucket for a target commit
type Candidates struct {
	Running   *model.Run
	Completed *model.Run
	Matched   int // runs whose head commit matched the target
}

// Decision is the outcome of the reuse step
type Decision struct {
	Run     *model.Run // nil when a new run must be triggered
	Bucket  Bucket
	Trigger bool
	Forced  bool
}

// FetchResult describes what the artifact fetcher placed on disk
type FetchResult struct {
	Dir      string   `json:"dir"`
	Name     string   `json:"name"`
	Fallback bool     `json:"fallback"`
	Files    []string `json:"files"`
}

// State is the reconciliation state of one invocation, threaded through
// every pipeline step
type State struct {
	Repo     string          `json:"repo"`
	Workflow string          `json:"workflow"`
	Ref      model.Ref       `json:"ref"`
	SHA      model.CommitSHA `json:"sha,omitempty"`

	Decision Decision   `json:"-"`
	Run      *model.Run `json:"run,omitempty"`

	Reused            bool             `json:"reused"`
	Bucket            Bucket           `json:"bucket"`
	Dispatched        bool             `json:"dispatched"`
	DiscoveryAttempts uint             `json:"discoveryAttempts,omitempty"`
	Conclusion        model.Conclusion `json:"conclusion,omitempty"`
	Artifact          *FetchResult     `json:"artifact,omitempty"`
}
