package gh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/s22625/fwbuild/internal/model"
)

// messages gh prints when the requested artifact does not exist on the run
var artifactMissingMarkers = []string{
	"no artifact matches",
	"no valid artifacts found",
	"no artifacts found",
}

// DownloadArtifact downloads the artifact called name from a run into dir.
// It returns an error wrapping ErrArtifactNotFound when the run has no such
// artifact.
func (c *Client) DownloadArtifact(ctx context.Context, runID int64, name, dir string) error {
	_, err := c.output(ctx, c.repoArgs("run", "download", strconv.FormatInt(runID, 10), "-n", name, "-D", dir)...)
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && isArtifactMissing(cmdErr.Stderr) {
		return fmt.Errorf("%w: %q on run %d: %w", ErrArtifactNotFound, name, runID, err)
	}
	return err
}

// DownloadAllArtifacts downloads every artifact of a run into dir
func (c *Client) DownloadAllArtifacts(ctx context.Context, runID int64, dir string) error {
	_, err := c.output(ctx, c.repoArgs("run", "download", strconv.FormatInt(runID, 10), "-D", dir)...)
	return err
}

// ListArtifacts returns the artifacts attached to a run
func (c *Client) ListArtifacts(ctx context.Context, runID int64) ([]model.Artifact, error) {
	if c.Repo == "" {
		return nil, fmt.Errorf("repository is required to list artifacts of run %d", runID)
	}
	path := fmt.Sprintf("repos/%s/actions/runs/%d/artifacts", c.ownerName(), runID)
	out, err := c.output(ctx, c.apiArgs(path, "--jq", ".artifacts")...)
	if err != nil {
		return nil, err
	}

	var artifacts []model.Artifact
	if err := json.Unmarshal(out, &artifacts); err != nil {
		return nil, fmt.Errorf("decode artifacts of run %d: %w", runID, err)
	}
	return artifacts, nil
}

func isArtifactMissing(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, marker := range artifactMissingMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
