package services

import "errors"

// ErrKind classifies a domain error so handlers can pick the HTTP status
// without parsing messages.
type ErrKind string

const (
	KindPermissionDenied ErrKind = "permission_denied"
	KindNotFound         ErrKind = "not_found"
	KindInvalidState     ErrKind = "invalid_state"
	KindExpired          ErrKind = "expired"
	KindAlreadyConsumed  ErrKind = "already_consumed"
	KindEmailMismatch    ErrKind = "email_mismatch"
	KindValidation       ErrKind = "validation"
	KindConsistency      ErrKind = "consistency_violation"
	KindInternal         ErrKind = "internal"
)

// DomainError is the structured error surfaced by all services. Raw storage
// errors never escape; they are wrapped with KindInternal at the boundary.
type DomainError struct {
	Kind    ErrKind
	Message string
	cause   error
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.cause }

func newError(kind ErrKind, msg string) *DomainError {
	return &DomainError{Kind: kind, Message: msg}
}

func PermissionDenied(msg string) *DomainError { return newError(KindPermissionDenied, msg) }
func NotFound(msg string) *DomainError         { return newError(KindNotFound, msg) }
func InvalidState(msg string) *DomainError     { return newError(KindInvalidState, msg) }
func Expired(msg string) *DomainError          { return newError(KindExpired, msg) }
func AlreadyConsumed(msg string) *DomainError  { return newError(KindAlreadyConsumed, msg) }
func EmailMismatch(msg string) *DomainError    { return newError(KindEmailMismatch, msg) }
func ValidationError(msg string) *DomainError  { return newError(KindValidation, msg) }
func Consistency(msg string) *DomainError      { return newError(KindConsistency, msg) }

// storageError wraps an unexpected storage-layer failure.
func storageError(err error) *DomainError {
	return &DomainError{Kind: KindInternal, Message: "storage operation failed", cause: err}
}

// KindOf extracts the kind from an error, or KindInternal for anything that
// is not a DomainError.
func KindOf(err error) ErrKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrKind) bool {
	return KindOf(err) == kind
}
