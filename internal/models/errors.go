package models

import (
	"errors"
	"fmt"
)

// Classification is the normalized failure category produced at the
// platform boundary. It is the only error identity the rest of the
// system inspects; nothing above the boundary matches on raw platform
// errors or message strings.
type Classification int

const (
	// ClassFatal covers malformed input, permission denial and anything
	// the boundary could not classify. Never retried.
	ClassFatal Classification = iota

	// ClassTransient covers network faults and timeouts. Retried with
	// exponential backoff.
	ClassTransient

	// ClassRateLimited means the platform asked us to slow down. Retried
	// with a longer cooldown than ClassTransient.
	ClassRateLimited

	// ClassAuthExpired means the stored credentials are no longer valid.
	// The caller must re-login; retrying cannot succeed.
	ClassAuthExpired

	// ClassChallengeRequired means the platform demands out-of-band
	// verification. Requires human action, never retried.
	ClassChallengeRequired

	// ClassNotFound means the requested resource does not exist.
	ClassNotFound
)

func (c Classification) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassRateLimited:
		return "rate_limited"
	case ClassAuthExpired:
		return "auth_expired"
	case ClassChallengeRequired:
		return "challenge_required"
	case ClassNotFound:
		return "not_found"
	default:
		return "fatal"
	}
}

// Retryable reports whether the backoff layer may retry this class.
func (c Classification) Retryable() bool {
	return c == ClassTransient || c == ClassRateLimited
}

// ClassifiedError is the error type crossing the platform boundary. It
// carries the classification that drives retry decisions plus a
// user-presentable message; Err keeps the underlying cause for logging.
type ClassifiedError struct {
	Class   Classification
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	if len(e.Message) > 0 {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Class.String()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

func newClassified(class Classification, cause error, format string, args ...any) *ClassifiedError {
	return &ClassifiedError{
		Class:   class,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// NewTransient tags a network-level fault as retryable.
func NewTransient(cause error, format string, args ...any) *ClassifiedError {
	return newClassified(ClassTransient, cause, format, args...)
}

// NewRateLimited tags a platform cooldown response.
func NewRateLimited(cause error, format string, args ...any) *ClassifiedError {
	return newClassified(ClassRateLimited, cause, format, args...)
}

// NewAuthExpired tags a rejected or stale credential.
func NewAuthExpired(cause error, format string, args ...any) *ClassifiedError {
	return newClassified(ClassAuthExpired, cause, format, args...)
}

// NewChallengeRequired tags a verification challenge. The message is the
// guidance text shown to the user.
func NewChallengeRequired(cause error, format string, args ...any) *ClassifiedError {
	return newClassified(ClassChallengeRequired, cause, format, args...)
}

// NewNotFound tags a missing resource.
func NewNotFound(cause error, format string, args ...any) *ClassifiedError {
	return newClassified(ClassNotFound, cause, format, args...)
}

// NewFatal tags an unrecoverable failure.
func NewFatal(cause error, format string, args ...any) *ClassifiedError {
	return newClassified(ClassFatal, cause, format, args...)
}

// ClassificationOf extracts the classification from an error chain. An
// error carrying no classification maps to ClassFatal: the boundary is
// the only producer, so an unclassified error is a programming fault that
// must surface loudly rather than be retried.
func ClassificationOf(err error) Classification {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Class
	}
	return ClassFatal
}
