package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, caller-facing category of a ledger failure.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindUnknownAccount      ErrorKind = "unknown_account"
	KindUnknownMarket       ErrorKind = "unknown_market"
	KindUnknownWager        ErrorKind = "unknown_wager"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindAlreadyDeclared     ErrorKind = "already_declared"
)

// Error is a domain failure carrying one ErrorKind and a human readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the kind sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance}
	ErrUnknownAccount      = &Error{Kind: KindUnknownAccount}
	ErrUnknownMarket       = &Error{Kind: KindUnknownMarket}
	ErrUnknownWager        = &Error{Kind: KindUnknownWager}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrAlreadyDeclared     = &Error{Kind: KindAlreadyDeclared}
)

// Finer causes wrapped inside invalid_input errors.
var (
	ErrInvalidPanel   = errors.New("invalid panel")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrUnknownBetType = errors.New("unknown bet type")
)

// NewError builds a domain error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a domain error of the given kind around a cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
