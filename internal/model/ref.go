package model

import (
	"fmt"
	"regexp"
	"strings"
)

// commitRefRegex matches an abbreviated or full hex commit hash
var commitRefRegex = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

// Ref names a revision to build: a branch name or a commit hash
type Ref string

// ParseRef trims and validates a user-supplied ref
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty ref")
	}
	if strings.ContainsAny(s, " \t\n") {
		return "", fmt.Errorf("invalid ref %q: contains whitespace", s)
	}
	return Ref(s), nil
}

// IsCommit reports whether the ref looks like a commit hash rather than a branch
func (r Ref) IsCommit() bool {
	return commitRefRegex.MatchString(string(r))
}

// Branch returns the branch name, or "" when the ref is a commit hash.
func (r Ref) Branch() string {
	if r.IsCommit() {
		return ""
	}
	return string(r)
}

func (r Ref) String() string {
	return string(r)
}

// CommitSHA is the canonical full-length commit identity of a revision
type CommitSHA string

// Short returns the git-style 7-char abbreviation
func (s CommitSHA) Short() string {
	if len(s) <= 7 {
		return string(s)
	}
	return string(s[:7])
}

func (s CommitSHA) String() string {
	return string(s)
}

// IsZero reports whether no commit has been resolved
func (s CommitSHA) IsZero() bool {
	return s == ""
}
