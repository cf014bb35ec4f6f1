package sentiment

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyInput is returned for missing, invalid or whitespace-only text.
	ErrEmptyInput = errors.New("invalid or empty text input")

	// ErrEmptyAfterNormalization is returned when cleaning removes all content.
	ErrEmptyAfterNormalization = errors.New("text became empty after normalization")

	// ErrScorerUnavailable is returned when a scorer's lexicon failed to initialize.
	ErrScorerUnavailable = errors.New("scorer unavailable")

	// ErrInternalScoring wraps any unexpected fault raised while scoring.
	ErrInternalScoring = errors.New("analysis failed")

	// ErrUnknownMethod is returned when a method name cannot be parsed.
	ErrUnknownMethod = errors.New("unknown analysis method")
)

// errorFromMessage maps a serialized error annotation back onto its sentinel.
func errorFromMessage(msg string) error {
	switch {
	case msg == ErrEmptyInput.Error():
		return ErrEmptyInput
	case msg == ErrEmptyAfterNormalization.Error():
		return ErrEmptyAfterNormalization
	case strings.HasPrefix(msg, ErrInternalScoring.Error()):
		return &annotatedError{sentinel: ErrInternalScoring, msg: msg}
	case strings.HasPrefix(msg, ErrUnknownMethod.Error()):
		return &annotatedError{sentinel: ErrUnknownMethod, msg: msg}
	default:
		return errors.New(msg)
	}
}

type annotatedError struct {
	sentinel error
	msg      string
}

func (e *annotatedError) Error() string { return e.msg }
func (e *annotatedError) Unwrap() error { return e.sentinel }
