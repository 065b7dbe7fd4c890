// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation checks everything a user types before it reaches the
// recommendation pipeline.
//
// # Request validation
//
// ValidateStruct runs go-playground/validator v10 through a thread-safe
// singleton. Field names in errors use the json tag, so messages match what
// the client sent:
//
//	type AnswerRequest struct {
//	    Text string `json:"text" validate:"required,max=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// The custom "country" tag accepts any name or ISO 3166 code known to the
// region package.
//
// # Preference answers
//
// CleanInputText strips everything but letters, whitespace, apostrophes and
// hyphens, lowercases the rest and enforces MaxInputLength. Its errors carry
// the exact message shown to the user.
//
// Classifier asks the tool model whether an answer plausibly describes
// movies or actors. A "no" verdict is advisory: the caller shows
// LowConfidenceWarning and still records the answer.
package validation
