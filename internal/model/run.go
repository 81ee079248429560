package model

import (
	"strconv"
	"time"
)

// Status represents the lifecycle state of a workflow run
type Status string

const (
	StatusRequested  Status = "requested"
	StatusQueued     Status = "queued"
	StatusPending    Status = "pending"
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Conclusion is the terminal outcome of a completed run
type Conclusion string

const (
	ConclusionSuccess        Conclusion = "success"
	ConclusionFailure        Conclusion = "failure"
	ConclusionCancelled      Conclusion = "cancelled"
	ConclusionSkipped        Conclusion = "skipped"
	ConclusionTimedOut       Conclusion = "timed_out"
	ConclusionActionRequired Conclusion = "action_required"
	ConclusionNeutral        Conclusion = "neutral"
	ConclusionStale          Conclusion = "stale"
)

// EventWorkflowDispatch is the event name of runs started by a dispatch call
const EventWorkflowDispatch = "workflow_dispatch"

// Run is one execution of a CI workflow, as observed on the control plane
type Run struct {
	ID           int64      `json:"databaseId"`
	HeadSHA      CommitSHA  `json:"headSha"`
	HeadBranch   string     `json:"headBranch"`
	Status       Status     `json:"status"`
	Conclusion   Conclusion `json:"conclusion"`
	URL          string     `json:"url"`
	Event        string     `json:"event"`
	WorkflowName string     `json:"workflowName"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsCompleted returns true once the run reached a terminal state
func (r *Run) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// Outcome returns the conclusion of a completed run. ok is false while the
// run is still queued or in progress; the conclusion is not meaningful then.
func (r *Run) Outcome() (c Conclusion, ok bool) {
	if !r.IsCompleted() {
		return "", false
	}
	return r.Conclusion, true
}

// Succeeded returns true if the run completed with a success conclusion
func (r *Run) Succeeded() bool {
	c, ok := r.Outcome()
	return ok && c == ConclusionSuccess
}

// Targets reports whether the run was built for the given commit
func (r *Run) Targets(sha CommitSHA) bool {
	return sha != "" && r.HeadSHA == sha
}

// IDString returns the run ID in the form the gh CLI expects
func (r *Run) IDString() string {
	return strconv.FormatInt(r.ID, 10)
}

// RunSet is an ordered snapshot of recent runs, newest first
type RunSet []*Run

// IDs returns the set of run IDs in the snapshot
func (s RunSet) IDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(s))
	for _, r := range s {
		ids[r.ID] = struct{}{}
	}
	return ids
}

// Artifact is a named downloadable blob attached to a run
type Artifact struct {
	Name        string `json:"name"`
	SizeInBytes int64  `json:"size_in_bytes"`
	Expired     bool   `json:"expired"`
}
