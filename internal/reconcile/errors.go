package reconcile

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal reconciliation failure
type Kind string

const (
	KindToolMissing             Kind = "ToolMissing"
	KindAuthError               Kind = "AuthError"
	KindRefResolutionError      Kind = "RefResolutionError"
	KindRunLocateError          Kind = "RunLocateError"
	KindDispatchError           Kind = "DispatchError"
	KindRunDiscoveryTimeout     Kind = "RunDiscoveryTimeout"
	KindRunWatchFailure         Kind = "RunWatchFailure"
	KindBuildFailed             Kind = "BuildFailed"
	KindArtifactDownloadFailure Kind = "ArtifactDownloadFailure"
)

// Error is a user-facing reconciliation failure with an optional hint
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += "\nHint: " + e.Hint
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a reconciliation error anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind, true
	}
	return "", false
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) withHint(hint string) *Error {
	e.Hint = hint
	return e
}
