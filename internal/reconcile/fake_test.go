package reconcile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/s22625/fwbuild/internal/gh"
	"github.com/s22625/fwbuild/internal/logging"
	"github.com/s22625/fwbuild/internal/model"
	"github.com/s22625/fwbuild/internal/poll"
)

const (
	testSHA   = model.CommitSHA("abc1230000000000000000000000000000000000")
	otherSHA  = model.CommitSHA("def4560000000000000000000000000000000000")
	testRepo  = "acme/glove80-zmk-config"
	testRunID = int64(101)
)

// fakeHost is an in-memory Hosting. Dispatch-event listings are served from
// eventLists in order; the last entry repeats once exhausted.
type fakeHost struct {
	installErr error
	authErr    error

	sha        model.CommitSHA
	resolveErr error

	runs    model.RunSet
	listErr error

	eventLists []model.RunSet
	eventErrs  []error
	eventCalls int

	dispatchErr error
	dispatched  int

	watchErr error
	watched  []int64
	views    map[int64]*model.Run
	viewErr  error

	failedLogs    string
	failedLogsErr error
	fullLogs      string
	logCalls      []bool

	downloadErr    error
	downloadAllErr error
	namedCalls     int
	allCalls       int
	artifacts      []model.Artifact
	artifactsErr   error

	listCalls []gh.ListRunsOptions
}

func (f *fakeHost) CheckInstalled() error { return f.installErr }

func (f *fakeHost) CheckAuth(context.Context) error { return f.authErr }

func (f *fakeHost) ResolveCommit(context.Context, model.Ref) (model.CommitSHA, error) {
	return f.sha, f.resolveErr
}

func (f *fakeHost) ListRuns(_ context.Context, opts gh.ListRunsOptions) (model.RunSet, error) {
	f.listCalls = append(f.listCalls, opts)
	if opts.Event != model.EventWorkflowDispatch {
		return f.runs, f.listErr
	}

	i := f.eventCalls
	f.eventCalls++
	var err error
	if i < len(f.eventErrs) {
		err = f.eventErrs[i]
	}
	if len(f.eventLists) == 0 {
		return nil, err
	}
	if i >= len(f.eventLists) {
		i = len(f.eventLists) - 1
	}
	return f.eventLists[i], err
}

func (f *fakeHost) ViewRun(_ context.Context, runID int64) (*model.Run, error) {
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	return f.views[runID], nil
}

func (f *fakeHost) DispatchWorkflow(context.Context, string, model.Ref) error {
	f.dispatched++
	return f.dispatchErr
}

func (f *fakeHost) WatchRun(_ context.Context, runID int64, _ time.Duration) error {
	f.watched = append(f.watched, runID)
	return f.watchErr
}

func (f *fakeHost) RunLogs(_ context.Context, _ int64, failedOnly bool) (string, error) {
	f.logCalls = append(f.logCalls, failedOnly)
	if failedOnly {
		return f.failedLogs, f.failedLogsErr
	}
	return f.fullLogs, nil
}

func (f *fakeHost) DownloadArtifact(_ context.Context, _ int64, name, dir string) error {
	f.namedCalls++
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(filepath.Join(dir, name), []byte("uf2"), 0644)
}

func (f *fakeHost) DownloadAllArtifacts(_ context.Context, _ int64, dir string) error {
	f.allCalls++
	if f.downloadAllErr != nil {
		return f.downloadAllErr
	}
	sub := filepath.Join(dir, "firmware")
	if err := os.MkdirAll(sub, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(sub, "left.uf2"), []byte("uf2"), 0644)
}

func (f *fakeHost) ListArtifacts(context.Context, int64) ([]model.Artifact, error) {
	return f.artifacts, f.artifactsErr
}

func newTestEngine(t *testing.T, host *fakeHost, opts Options) (*Engine, *bytes.Buffer) {
	t.Helper()
	if opts.Repo == "" {
		opts.Repo = testRepo
	}
	if opts.Ref == "" {
		opts.Ref = "main"
	}
	if opts.OutDir == "" {
		opts.OutDir = filepath.Join(t.TempDir(), "artifacts")
	}
	if opts.Discovery.Attempts == 0 {
		opts.Discovery = poll.Policy{Interval: time.Millisecond, Attempts: 10}
	}
	var buf bytes.Buffer
	return New(host, opts, logging.New(&buf, logging.LevelDebug)), &buf
}

func at(minute int) time.Time {
	return time.Date(2026, 5, 1, 12, minute, 0, 0, time.UTC)
}

func runningRun(id int64, sha model.CommitSHA, updated time.Time) *model.Run {
	return &model.Run{ID: id, HeadSHA: sha, Status: model.StatusInProgress, UpdatedAt: updated, URL: "https://github.com/acme/r/actions/runs/x"}
}

func completedRun(id int64, sha model.CommitSHA, c model.Conclusion, updated time.Time) *model.Run {
	return &model.Run{ID: id, HeadSHA: sha, Status: model.StatusCompleted, Conclusion: c, UpdatedAt: updated}
}
