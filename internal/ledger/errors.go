package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger error for the transport layer.
type Kind int

const (
	// KindValidation: malformed or out-of-range input, rejected before any write.
	KindValidation Kind = iota + 1
	// KindInvariant: business-rule rejection (balance insufficiency, bad settlement endpoints).
	KindInvariant
	// KindNotFound: referenced cycle/transaction/institution does not exist.
	KindNotFound
	// KindImmutable: edit attempted on a row that cannot change once created.
	KindImmutable
)

// Error carries a human-readable description plus a stable classification.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Invariantf(format string, args ...interface{}) error {
	return &Error{Kind: KindInvariant, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Immutablef(format string, args ...interface{}) error {
	return &Error{Kind: KindImmutable, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or 0 when err is not a ledger error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
