package errors

import (
	"errors"
)

// Common error types
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrExternal           = errors.New("external call failed")
	ErrNotFound           = errors.New("not found")
)

// Rejection is an error whose Text is meant to be shown to the user as is.
type Rejection struct {
	Kind error
	Text string
}

func (r *Rejection) Error() string {
	return r.Kind.Error() + ": " + r.Text
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

func Reject(kind error, text string) error {
	return &Rejection{Kind: kind, Text: text}
}

// AsRejection reports the user-facing rejection wrapped in err, if any.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
