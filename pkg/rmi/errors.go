package rmi

import "fmt"

// Kind classifies a remote-invocation failure so that it can be
// reconstructed at the caller after crossing the wire. These are the seven
// error kinds every interface in this module surfaces at its RMI boundary.
type Kind uint32

const (
	// KindNotFound: the operation targets a path the responder does not know.
	KindNotFound Kind = iota
	// KindInvalidArgument: malformed path, illegal component, bad bounds.
	KindInvalidArgument
	// KindOutOfBounds: a byte range falls outside the file.
	KindOutOfBounds
	// KindNullArg: a required argument is missing.
	KindNullArg
	// KindIllegalState: server not started, already registered, etc.
	KindIllegalState
	// KindRemoteInvocation: transport, marshalling, or unexpected remote failure.
	KindRemoteInvocation
	// KindIOError: a local filesystem failure on the storage server.
	KindIOError
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindNullArg:
		return "NullArg"
	case KindIllegalState:
		return "IllegalState"
	case KindRemoteInvocation:
		return "RemoteInvocation"
	case KindIOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// CallError is the error type carried across the RMI boundary. A reply
// that failed encodes a CallError; the stub reconstructs one of these on
// the caller's side rather than a generic error, so callers can recover the
// kind with errors.As.
type CallError struct {
	Kind    Kind
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a CallError with the given kind and a formatted message.
func NewError(kind Kind, format string, args ...any) *CallError {
	return &CallError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *CallError of kind k, so callers can write
// `errors.Is(err, rmi.AsKind(rmi.KindNotFound))`.
func (e *CallError) Is(target error) bool {
	other, ok := target.(*CallError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// AsKind returns a zero-message CallError usable as an errors.Is sentinel
// for a given kind, e.g. errors.Is(err, rmi.AsKind(rmi.KindNotFound)).
func AsKind(kind Kind) *CallError {
	return &CallError{Kind: kind}
}
