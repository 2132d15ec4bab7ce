package treeval

import "fmt"

// Kind classifies an Error raised anywhere in the tree/merge core.
type Kind int

const (
	// StoreIo indicates an underlying store read or write failed.
	StoreIo Kind = iota
	// NotFound indicates a referenced tree, file, or conflict id is absent.
	NotFound
	// Corrupt indicates stored bytes could not be decoded.
	Corrupt
	// InvariantViolation indicates a case the design declares impossible was
	// reached. It is always fatal to the operation in progress.
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case StoreIo:
		return "store_io"
	case NotFound:
		return "not_found"
	case Corrupt:
		return "corrupt"
	case InvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error is the error type surfaced by every package in this module.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func isKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if te, ok := err.(*Error); ok {
			e = te
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}

// IsNotFound reports whether err (or a cause it wraps) is a NotFound Error.
func IsNotFound(err error) bool { return isKind(err, NotFound) }

// IsCorrupt reports whether err (or a cause it wraps) is a Corrupt Error.
func IsCorrupt(err error) bool { return isKind(err, Corrupt) }

// IsStoreIo reports whether err (or a cause it wraps) is a StoreIo Error.
func IsStoreIo(err error) bool { return isKind(err, StoreIo) }

// IsInvariantViolation reports whether err is an InvariantViolation Error.
func IsInvariantViolation(err error) bool { return isKind(err, InvariantViolation) }
