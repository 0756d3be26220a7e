package allocation

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so callers can map it to a response
// code without parsing messages.
type Kind uint8

const (
	KindValidation Kind = iota + 1 // bad or missing input, nothing written
	KindNotFound                   // room or reservation absent in hotel scope
	KindConflict                   // blocked room, overlap or zero category capacity
	KindAborted                    // precondition failed inside an atomic operation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAborted:
		return "aborted"
	}
	return "unknown"
}

// Error is the typed failure returned by every engine operation.  Message
// is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrConflict) holds
// for any conflict regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrAborted    = &Error{Kind: KindAborted}
)

func validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// abort marks a precondition failure raised inside a transaction body.  The
// original kind stays reachable through Unwrap; infrastructure errors pass
// through untouched.
func abort(err error) error {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindAborted {
		return err
	}
	return &Error{Kind: KindAborted, Message: e.Message, Err: e}
}

// KindOf returns the innermost engine kind in err's chain, or 0 when err
// did not originate in the engine.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	for {
		var inner *Error
		if e.Err == nil || !errors.As(e.Err, &inner) {
			return e.Kind
		}
		e = inner
	}
}
