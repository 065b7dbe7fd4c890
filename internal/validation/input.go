// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"errors"
	"regexp"
	"strings"
)

// MaxInputLength is the longest accepted preference answer after cleaning.
const MaxInputLength = 150

// Error messages are shown to the user verbatim.
var (
	ErrInvalidCharacters = errors.New("Invalid input. Your input can only include letters, spaces, apostrophes, and hyphens.")
	ErrInputTooLong      = errors.New("The input exceeds the maximum length of 150 characters. Please provide a shorter job title.")
)

var (
	disallowedChars = regexp.MustCompile(`[^a-zA-Z\s'-]`)
	onlyPunctuation = regexp.MustCompile(`^[\s'-]*$`)
)

// CleanInputText normalizes a preference answer. Characters other than
// letters, whitespace, apostrophes and hyphens are removed and the result is
// lowercased and trimmed.
func CleanInputText(text string) (string, error) {
	cleaned := disallowedChars.ReplaceAllString(text, "")
	cleaned = strings.TrimSpace(strings.ToLower(cleaned))

	if onlyPunctuation.MatchString(cleaned) {
		return "", ErrInvalidCharacters
	}
	if len(cleaned) > MaxInputLength {
		return "", ErrInputTooLong
	}
	return cleaned, nil
}
