package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/s22625/fwbuild/internal/model"
)

// DefaultRunLimit bounds how many recent runs a listing returns
const DefaultRunLimit = 200

var runFields = []string{
	"databaseId",
	"headSha",
	"headBranch",
	"status",
	"conclusion",
	"url",
	"event",
	"workflowName",
	"createdAt",
	"updatedAt",
}

// ListRunsOptions scopes a run listing
type ListRunsOptions struct {
	Workflow string
	Branch   string // empty lists all branches
	Event    string // empty lists all events
	Limit    int
}

// ListRuns returns a fresh snapshot of recent runs, newest first
func (c *Client) ListRuns(ctx context.Context, opts ListRunsOptions) (model.RunSet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	args := []string{"run", "list"}
	if opts.Workflow != "" {
		args = append(args, "--workflow", opts.Workflow)
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	if opts.Event != "" {
		args = append(args, "--event", opts.Event)
	}
	args = append(args, "--limit", strconv.Itoa(limit), "--json", strings.Join(runFields, ","))

	out, err := c.output(ctx, c.repoArgs(args...)...)
	if err != nil {
		return nil, err
	}

	var runs model.RunSet
	if err := json.Unmarshal(out, &runs); err != nil {
		return nil, fmt.Errorf("decode run list: %w", err)
	}
	return runs, nil
}

// ViewRun returns the current state of a single run
func (c *Client) ViewRun(ctx context.Context, runID int64) (*model.Run, error) {
	args := c.repoArgs("run", "view", strconv.FormatInt(runID, 10), "--json", strings.Join(runFields, ","))
	out, err := c.output(ctx, args...)
	if err != nil {
		return nil, err
	}

	var run model.Run
	if err := json.Unmarshal(out, &run); err != nil {
		return nil, fmt.Errorf("decode run %d: %w", runID, err)
	}
	return &run, nil
}

// DispatchWorkflow triggers a workflow_dispatch run of workflow on ref.
// The API does not return the identity of the created run.
func (c *Client) DispatchWorkflow(ctx context.Context, workflow string, ref model.Ref) error {
	_, err := c.output(ctx, c.repoArgs("workflow", "run", workflow, "--ref", ref.String())...)
	return err
}

// WatchRun blocks until the run completes, streaming progress to c.Stream.
// A non-zero exit means the watch itself failed; the run conclusion must be
// read separately.
func (c *Client) WatchRun(ctx context.Context, runID int64, interval time.Duration) error {
	args := []string{"run", "watch", strconv.FormatInt(runID, 10)}
	if secs := int(interval / time.Second); secs > 0 {
		args = append(args, "--interval", strconv.Itoa(secs))
	}
	return c.stream(ctx, c.repoArgs(args...)...)
}

// RunLogs returns the logs of a run. With failedOnly set only the logs of
// failed steps are returned.
func (c *Client) RunLogs(ctx context.Context, runID int64, failedOnly bool) (string, error) {
	flag := "--log"
	if failedOnly {
		flag = "--log-failed"
	}
	out, err := c.output(ctx, c.repoArgs("run", "view", strconv.FormatInt(runID, 10), flag)...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
