package reconcile

import (
	"testing"

	"github.com/s22625/fwbuild/internal/model"
)

func TestClassify(t *testing.T) {
	runs := model.RunSet{
		runningRun(1, otherSHA, at(50)),
		runningRun(2, testSHA, at(10)),
		runningRun(3, testSHA, at(20)),
		{ID: 4, HeadSHA: testSHA, Status: model.StatusQueued, UpdatedAt: at(15)},
		completedRun(5, testSHA, model.ConclusionFailure, at(5)),
		completedRun(6, testSHA, model.ConclusionSuccess, at(30)),
		completedRun(7, otherSHA, model.ConclusionSuccess, at(59)),
		nil,
	}

	c := Classify(runs, testSHA)
	if c.Matched != 5 {
		t.Errorf("Matched = %d, want 5", c.Matched)
	}
	if c.Running == nil || c.Running.ID != 3 {
		t.Errorf("Running = %+v, want run 3", c.Running)
	}
	if c.Completed == nil || c.Completed.ID != 6 {
		t.Errorf("Completed = %+v, want run 6", c.Completed)
	}
}

func TestClassifyTieKeepsFirstSeen(t *testing.T) {
	runs := model.RunSet{
		completedRun(9, testSHA, model.ConclusionSuccess, at(10)),
		completedRun(20, testSHA, model.ConclusionSuccess, at(10)),
	}
	c := Classify(runs, testSHA)
	if c.Completed.ID != 9 {
		t.Fatalf("Completed = %d, want first seen run 9", c.Completed.ID)
	}
}

func TestClassifyPrefersRecencyOverID(t *testing.T) {
	runs := model.RunSet{
		completedRun(500, testSHA, model.ConclusionSuccess, at(1)),
		completedRun(2, testSHA, model.ConclusionFailure, at(2)),
	}
	c := Classify(runs, testSHA)
	if c.Completed.ID != 2 {
		t.Fatalf("Completed = %d, want most recently updated run 2", c.Completed.ID)
	}
}

func TestDecide(t *testing.T) {
	running := runningRun(1, testSHA, at(1))
	completed := completedRun(2, testSHA, model.ConclusionSuccess, at(30))

	tests := []struct {
		name        string
		cands       Candidates
		force       bool
		wantRun     *model.Run
		wantBucket  Bucket
		wantTrigger bool
	}{
		{name: "running beats completed", cands: Candidates{Running: running, Completed: completed}, wantRun: running, wantBucket: BucketRunning},
		{name: "completed only", cands: Candidates{Completed: completed}, wantRun: completed, wantBucket: BucketCompleted},
		{name: "nothing", cands: Candidates{}, wantBucket: BucketNone, wantTrigger: true},
		{name: "force skips reuse", cands: Candidates{Running: running, Completed: completed}, force: true, wantBucket: BucketNone, wantTrigger: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.cands, tt.force)
			if d.Run != tt.wantRun || d.Bucket != tt.wantBucket || d.Trigger != tt.wantTrigger {
				t.Fatalf("Decide() = %+v", d)
			}
			if d.Forced != tt.force {
				t.Fatalf("Forced = %v, want %v", d.Forced, tt.force)
			}
		})
	}
}
