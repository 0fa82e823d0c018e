package sanitize

import "errors"

// ErrorKind is a stable category of pipeline failure. Branch on it, not on messages.
type ErrorKind string

const (
	KindParse     ErrorKind = "parse"
	KindShape     ErrorKind = "shape"
	KindEmpty     ErrorKind = "empty"
	KindContract  ErrorKind = "contract"
	KindForbidden ErrorKind = "forbidden"
	KindInternal  ErrorKind = "internal"
)

// Error describes why a reply was replaced by the fallback marker.
// It never leaves the pipeline as a failure; Result carries it for logging.
type Error struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return string(e.Stage) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Stage) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind ErrorKind, stage Stage, msg string) error {
	return &Error{Kind: kind, Stage: stage, Message: msg}
}

func wrapError(kind ErrorKind, stage Stage, msg string, cause error) error {
	return &Error{Kind: kind, Stage: stage, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
