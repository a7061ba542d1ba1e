package telegram

import (
	"errors"
	"fmt"
	"time"
)

// Kind enumerates the named Telegram RPC failures the command layer branches
// on. Anything the bridge doesn't have a specific reaction to stays a plain
// wrapped error.
type Kind int

const (
	KindUnknown Kind = iota
	KindPhoneCodeInvalid
	KindPhoneCodeExpired
	KindSessionPasswordNeeded
	KindPasswordHashInvalid
	KindPhoneNumberOccupied
	KindPhoneNumberUnoccupied
	KindPhoneNumberBanned
	KindPhoneNumberFlood
	KindAppSignupForbidden
	KindFirstNameInvalid
	KindFloodWait
	KindInviteHashInvalid
	KindInviteHashExpired
	KindAlreadyParticipant
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindPhoneCodeInvalid:      "phone code invalid",
	KindPhoneCodeExpired:      "phone code expired",
	KindSessionPasswordNeeded: "session password needed",
	KindPasswordHashInvalid:   "password hash invalid",
	KindPhoneNumberOccupied:   "phone number occupied",
	KindPhoneNumberUnoccupied: "phone number unoccupied",
	KindPhoneNumberBanned:     "phone number banned",
	KindPhoneNumberFlood:      "phone number flood",
	KindAppSignupForbidden:    "app signup forbidden",
	KindFirstNameInvalid:      "first name invalid",
	KindFloodWait:             "flood wait",
	KindInviteHashInvalid:     "invite hash invalid",
	KindInviteHashExpired:     "invite hash expired",
	KindAlreadyParticipant:    "already a participant",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified Telegram RPC failure.
type Error struct {
	Kind Kind
	// RetryAfter is set for KindFloodWait.
	RetryAfter time.Duration
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("telegram: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("telegram: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError wraps cause with a classified kind. A nil cause is allowed.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

// NewFloodWait builds a flood-wait error carrying the server-mandated delay.
func NewFloodWait(retryAfter time.Duration, cause error) *Error {
	return &Error{Kind: KindFloodWait, RetryAfter: retryAfter, cause: cause}
}

// IsKind reports whether err is a classified Telegram error of the given kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}

// AsError extracts the classified error, if any.
func AsError(err error) (*Error, bool) {
	var te *Error
	ok := errors.As(err, &te)
	return te, ok
}
