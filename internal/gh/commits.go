package gh

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/s22625/fwbuild/internal/model"
)

// ResolveCommit returns the full commit SHA a ref points to.
// An empty or null SHA in the API response is an error.
func (c *Client) ResolveCommit(ctx context.Context, ref model.Ref) (model.CommitSHA, error) {
	if c.Repo == "" {
		return "", fmt.Errorf("repository is required to resolve %q", ref)
	}
	path := fmt.Sprintf("repos/%s/commits/%s", c.ownerName(), url.PathEscape(ref.String()))
	out, err := c.output(ctx, c.apiArgs(path, "--jq", ".sha")...)
	if err != nil {
		return "", err
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" || sha == "null" {
		return "", fmt.Errorf("no commit SHA returned for ref %q", ref)
	}
	return model.CommitSHA(sha), nil
}
