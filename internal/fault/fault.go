// Package fault defines the error kinds shared by the glucose formatting layer.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindDivisionByZero
	KindFormatting
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindDivisionByZero:
		return "division by zero"
	case KindFormatting:
		return "formatting failure"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrFormatting      = errors.New("formatting failure")
)

// Error is a classified failure raised by an operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindDivisionByZero:
		return ErrDivisionByZero
	case KindFormatting:
		return ErrFormatting
	default:
		return nil
	}
}

// InvalidArgument builds a KindInvalidArgument error with a formatted detail.
func InvalidArgument(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// DivisionByZero builds a KindDivisionByZero error.
func DivisionByZero(op string) error {
	return &Error{Op: op, Kind: KindDivisionByZero}
}

// Formatting wraps err as a KindFormatting error.
func Formatting(op string, err error) error {
	return &Error{Op: op, Kind: KindFormatting, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
