package git

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

var execCommand = exec.Command

// remoteRepoRegex extracts owner/name from URL remotes (https, ssh, with an
// optional port) and scp-style remotes
var remoteRepoRegex = regexp.MustCompile(`^(?:(?:https?|ssh)://(?:[^@/]+@)?[^/:]+(?::\d+)?/|(?:[^@/]+@)?[^/:]+:)([^/]+)/([^/]+?)(?:\.git)?/?$`)

// FindRepoRoot finds the git repository root from the current directory
func FindRepoRoot(startDir string) (string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	cmd := execCommand("git", "-C", startDir, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch returns the checked-out branch of the repository at dir.
// A detached HEAD is an error: there is no branch to build.
func CurrentBranch(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = FindRepoRoot("")
		if err != nil {
			return "", err
		}
	}

	cmd := execCommand("git", "-C", dir, "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse --abbrev-ref HEAD: %w", err)
	}

	branch := strings.TrimSpace(string(output))
	if branch == "" || branch == "HEAD" {
		return "", fmt.Errorf("HEAD is detached; pass --ref explicitly")
	}
	return branch, nil
}

// RemoteURL returns the fetch URL of the named remote
func RemoteURL(dir, remote string) (string, error) {
	if remote == "" {
		remote = "origin"
	}
	if dir == "" {
		var err error
		dir, err = FindRepoRoot("")
		if err != nil {
			return "", err
		}
	}

	cmd := execCommand("git", "-C", dir, "remote", "get-url", remote)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git remote get-url %s: %w", remote, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// ParseRemoteRepo converts a remote URL into an owner/name repository identity.
// Accepted forms:
//   - https://github.com/owner/name(.git)
//   - git@github.com:owner/name(.git)
//   - ssh://git@github.com[:port]/owner/name(.git)
func ParseRemoteRepo(remoteURL string) (string, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	matches := remoteRepoRegex.FindStringSubmatch(remoteURL)
	if matches == nil || matches[1] == "" || matches[2] == "" {
		return "", fmt.Errorf("cannot derive owner/name from remote %q", remoteURL)
	}
	return matches[1] + "/" + matches[2], nil
}

// DetectRepo infers owner/name from the origin remote of the repository at dir
func DetectRepo(dir string) (string, error) {
	remote, err := RemoteURL(dir, "origin")
	if err != nil {
		return "", err
	}
	return ParseRemoteRepo(remote)
}
