package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/s22625/fwbuild/internal/model"
)

// Watch blocks until run is completed and returns its final state. Runs that
// are already completed are returned as is.
func (e *Engine) Watch(ctx context.Context, run *model.Run) (*model.Run, error) {
	if run.IsCompleted() {
		e.log.Debugf("run %d already completed, skipping watch", run.ID)
		return run, nil
	}

	e.log.Infof("watching run %d: %s", run.ID, run.URL)
	if err := e.host.WatchRun(ctx, run.ID, e.opts.WatchInterval); err != nil {
		return nil, newError(KindRunWatchFailure, err, "watching run %d failed", run.ID).
			withHint("the remote run keeps going; inspect it at " + run.URL)
	}

	final, err := e.host.ViewRun(ctx, run.ID)
	if err != nil {
		return nil, newError(KindRunWatchFailure, err, "cannot read final state of run %d", run.ID)
	}
	if !final.IsCompleted() {
		return final, newError(KindRunWatchFailure, nil, "run %d is still %s after watch returned", run.ID, final.Status)
	}
	return final, nil
}

// Conclude checks the outcome of a completed run. Anything but success prints
// the run's failure logs and returns a BuildFailed error.
func (e *Engine) Conclude(ctx context.Context, run *model.Run) error {
	c, ok := run.Outcome()
	if !ok {
		return newError(KindRunWatchFailure, nil, "run %d has not completed", run.ID)
	}
	if run.Succeeded() {
		e.log.Successf("run %d succeeded", run.ID)
		return nil
	}

	e.printFailureLogs(ctx, run)

	label := string(c)
	if label == "" {
		label = "unknown"
	}
	return newError(KindBuildFailed, nil, "run %d concluded %s", run.ID, label).
		withHint("fix the build and run again; failed runs are never retried: " + run.URL)
}

// printFailureLogs writes failed-step logs, falling back to the full log
func (e *Engine) printFailureLogs(ctx context.Context, run *model.Run) {
	logs, err := e.host.RunLogs(ctx, run.ID, true)
	if err != nil || strings.TrimSpace(logs) == "" {
		if err != nil {
			e.log.Debugf("failed-step logs unavailable: %v", err)
		}
		logs, err = e.host.RunLogs(ctx, run.ID, false)
		if err != nil {
			e.log.Warnf("cannot fetch logs of run %d: %v", run.ID, err)
			return
		}
	}

	w := e.log.Writer()
	fmt.Fprintf(w, "----- logs of run %d -----\n", run.ID)
	fmt.Fprint(w, logs)
	if !strings.HasSuffix(logs, "\n") {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "----- end of logs -----\n")
}
