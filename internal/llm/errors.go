// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChoices is returned when the API answers without any choice.
	ErrNoChoices = errors.New("model returned no choices")

	// ErrNoToolCall means the model did not call the requested function.
	ErrNoToolCall = errors.New("model did not call the requested function")

	// ErrEmptyContent means the model returned neither text nor a function call.
	ErrEmptyContent = errors.New("model returned empty content")
)

// ParseError reports a model reply that does not decode into the requested
// structure. Raw holds the offending payload for logging.
type ParseError struct {
	Target string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Target, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
