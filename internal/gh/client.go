// Package gh wraps the GitHub CLI for the calls fwbuild makes against the
// hosting API and the Actions control plane.
package gh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

var (
	execCommand = exec.CommandContext
	lookPath    = exec.LookPath
)

// Binary is the executable name of the GitHub CLI
const Binary = "gh"

var (
	ErrNotInstalled     = errors.New("gh CLI not found in PATH")
	ErrNotAuthenticated = errors.New("gh CLI is not authenticated")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// CommandError is returned when a gh invocation exits unsuccessfully
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("gh %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Client runs gh commands scoped to a single repository
type Client struct {
	Repo string // [host/]owner/name
	Host string // empty for github.com

	// Stream receives the live output of long-running commands (run watch).
	Stream io.Writer
}

// NewClient returns a client for repo that streams watch output to stderr.
// A repo of the form host/owner/name targets a GitHub Enterprise host.
func NewClient(repo string) *Client {
	c := &Client{Repo: repo, Stream: os.Stderr}
	if parts := strings.Split(repo, "/"); len(parts) == 3 {
		c.Host = parts[0]
	}
	return c
}

// ownerName returns Repo without its host prefix
func (c *Client) ownerName() string {
	if c.Host == "" {
		return c.Repo
	}
	return strings.TrimPrefix(c.Repo, c.Host+"/")
}

// apiArgs builds a gh api invocation against c.Host
func (c *Client) apiArgs(path string, args ...string) []string {
	out := []string{"api"}
	if c.Host != "" {
		out = append(out, "--hostname", c.Host)
	}
	out = append(out, path)
	return append(out, args...)
}

// CheckInstalled verifies the gh executable is on PATH
func (c *Client) CheckInstalled() error {
	if _, err := lookPath(Binary); err != nil {
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	return nil
}

// CheckAuth verifies gh has a logged-in account for the target host
func (c *Client) CheckAuth(ctx context.Context) error {
	args := []string{"auth", "status"}
	if c.Host != "" {
		args = append(args, "--hostname", c.Host)
	}
	if _, err := c.output(ctx, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return nil
}

func (c *Client) output(ctx context.Context, args ...string) ([]byte, error) {
	cmd := execCommand(ctx, Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return out, nil
}

// stream runs a command with stdout and stderr attached to c.Stream
func (c *Client) stream(ctx context.Context, args ...string) error {
	cmd := execCommand(ctx, Binary, args...)
	w := c.Stream
	if w == nil {
		w = io.Discard
	}
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		return &CommandError{Args: args, Err: err}
	}
	return nil
}

func (c *Client) repoArgs(args ...string) []string {
	if c.Repo == "" {
		return args
	}
	return append(args, "-R", c.Repo)
}
