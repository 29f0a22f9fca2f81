package relay_errors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the service can report.
// Callers match on Kind, never on the message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindRouteNotFound
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "AUTHENTICATION"
	case KindAuthorization:
		return "AUTHORIZATION"
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindRouteNotFound:
		return "ROUTE_NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindStorage:
		return "STORAGE"
	default:
		return "UNKNOWN"
	}
}

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Authentication(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Authorization(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func RouteNotFound(verb, path string) error {
	return &Error{Kind: KindRouteNotFound, Message: fmt.Sprintf("no route for %s %s", verb, path)}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Storage wraps an infrastructure fault. The cause is retained for logging
// but is never surfaced to callers of the HTTP API.
func Storage(err error) error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err was not produced
// by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
