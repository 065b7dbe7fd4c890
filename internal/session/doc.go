// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package session owns the conversation state machine and the service that
drives it.

# State Machine

	COLLECTING(0..2) -> GENERATING -> PRESENTING(index) -> FREE_CHAT -> ENDED
	       ^                                                              |
	       +------------------------------ Restart -----------------------+

  - COLLECTING asks the three scripted questions (themes, genres, actors).
  - GENERATING is entered after the third answer. A failed generation keeps
    the session here so the client can retry.
  - PRESENTING shows one of the reranked recommendations at a time. Next
    replaces the last assistant message with the following recommendation
    and is rejected at the last index.
  - FREE_CHAT hands the transcript to the conversation manager. It cannot be
    left except by ending the conversation.
  - ENDED is terminal until Restart, which is allowed from every phase.

Only Session methods mutate State. Transitions not allowed from the current
phase return ErrInvalidTransition and leave the state untouched.

# Service

Service loads a session from a Store, applies one action under a per-session
mutex, runs the external calls the action needs and saves the result. Two
stores are provided: MemoryStore for development and tests, BadgerStore for
persistence across restarts.
*/
package session
