// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/conversation"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// Session wraps a State and is the only place it is mutated. A Session is
// not safe for concurrent use; Service serializes access per ID.
type Session struct {
	state State
}

// New starts a conversation at the first question.
func New(id string, now time.Time) *Session {
	s := &Session{state: State{ID: id, CreatedAt: now}}
	s.reset(now)
	return s
}

// FromState resumes a stored conversation.
func FromState(st State) *Session {
	return &Session{state: st.Clone()}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state.Clone()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.state.Phase
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.state.LastActivity = now
}

// CurrentQuestion returns the question awaiting an answer, or "" outside
// the collecting phase.
func (s *Session) CurrentQuestion() string {
	if s.state.Phase != PhaseCollecting {
		return ""
	}
	return Question(s.state.CurrentQuestionIndex)
}

// SubmitAnswer commits text as the answer to the current question. It
// returns the next question, or done=true after the last answer, at which
// point the session waits for generation.
func (s *Session) SubmitAnswer(text string) (next string, done bool, err error) {
	if s.state.Phase != PhaseCollecting {
		return "", false, s.invalid("submit answer")
	}

	s.appendMessage(models.UserMessage(text))
	switch s.state.CurrentQuestionIndex {
	case 0:
		s.state.Preferences.Themes = text
	case 1:
		s.state.Preferences.Genres = text
	case 2:
		s.state.Preferences.Actors = text
	}
	s.state.CurrentQuestionIndex++

	if s.state.CurrentQuestionIndex < QuestionCount {
		next = Question(s.state.CurrentQuestionIndex)
		s.appendMessage(models.AssistantMessage(next))
		return next, false, nil
	}

	s.setPhase(PhaseGenerating)
	return "", true, nil
}

// Preferences returns the collected answers once generation can run. A
// stored state in the generating phase with a missing answer cannot
// generate.
func (s *Session) Preferences() (models.Preferences, error) {
	if s.state.Phase != PhaseGenerating {
		return models.Preferences{}, s.invalid("generate")
	}
	if !s.state.Preferences.Complete() {
		return models.Preferences{}, fmt.Errorf("%w: cannot generate without all three answers", ErrInvalidTransition)
	}
	return s.state.Preferences, nil
}

// CompleteGeneration stores the reranked recommendations and presents the
// first one. An empty list keeps the session in the generating phase and
// returns the apology instead.
func (s *Session) CompleteGeneration(recs []models.Recommendation) (string, error) {
	if s.state.Phase != PhaseGenerating {
		return "", s.invalid("complete generation")
	}
	if len(recs) == 0 {
		s.appendMessage(models.AssistantMessage(GenerationEmptyMessage))
		return GenerationEmptyMessage, nil
	}

	s.state.Recommendations = cloneSlice(recs)
	s.state.RecommendationsGenerated = true
	s.state.CurrentRecommendationIndex = 0
	s.state.Descriptions = nil
	s.setPhase(PhasePresenting)

	msg := FormatRecommendation(recs[0])
	s.appendMessage(models.AssistantMessage(msg))
	return msg, nil
}

// FailGeneration records a failed generation. The session stays in the
// generating phase so the client can retry.
func (s *Session) FailGeneration() (string, error) {
	if s.state.Phase != PhaseGenerating {
		return "", s.invalid("fail generation")
	}
	s.appendMessage(models.AssistantMessage(GenerationErrorMessage))
	return GenerationErrorMessage, nil
}

// Current returns the recommendation on screen.
func (s *Session) Current() (models.Recommendation, error) {
	if s.state.Phase != PhasePresenting {
		return models.Recommendation{}, s.invalid("look up recommendation")
	}
	return s.state.Recommendations[s.state.CurrentRecommendationIndex], nil
}

// Recommendations returns a copy of the presented list.
func (s *Session) Recommendations() []models.Recommendation {
	return cloneSlice(s.state.Recommendations)
}

// Next presents the following recommendation in place of the last
// assistant message.
func (s *Session) Next() (string, error) {
	if s.state.Phase != PhasePresenting {
		return "", s.invalid("suggest another")
	}
	if !s.state.HasNext() {
		return "", ErrNoMoreRecommendations
	}

	s.state.CurrentRecommendationIndex++
	if n := len(s.state.Transcript); n > 0 && s.state.Transcript[n-1].Role == models.RoleAssistant {
		s.state.Transcript = s.state.Transcript[:n-1]
	}

	msg := FormatRecommendation(s.state.Recommendations[s.state.CurrentRecommendationIndex])
	s.appendMessage(models.AssistantMessage(msg))
	return msg, nil
}

// NeedsDescriptions reports whether StartFreeChat has no cached
// descriptions to reuse.
func (s *Session) NeedsDescriptions() bool {
	return s.state.Descriptions == nil
}

// StartFreeChat enters free chat. descriptions are cached on the session
// when none are stored yet.
func (s *Session) StartFreeChat(descriptions []models.MovieDescription) (string, error) {
	if s.state.Phase != PhasePresenting {
		return "", s.invalid("start chat")
	}
	if s.state.Descriptions == nil {
		s.state.Descriptions = descriptions
		if s.state.Descriptions == nil {
			s.state.Descriptions = []models.MovieDescription{}
		}
	}

	s.state.FreeChatActive = true
	s.setPhase(PhaseFreeChat)

	introduced := s.hasAssistantMessage(FreeChatIntro)
	s.appendMessage(models.UserMessage(ContinueConversationMessage))
	if !introduced {
		s.appendMessage(models.AssistantMessage(FreeChatIntro))
	}
	return FreeChatIntro, nil
}

func (s *Session) hasAssistantMessage(content string) bool {
	for _, m := range s.state.Transcript {
		if m.Role == models.RoleAssistant && m.Content == content {
			return true
		}
	}
	return false
}

// ChatContext returns what the conversation manager needs to answer the
// next message.
func (s *Session) ChatContext() ([]models.Message, []models.MovieDescription, error) {
	if s.state.Phase != PhaseFreeChat {
		return nil, nil, s.invalid("chat")
	}
	return cloneSlice(s.state.Transcript), s.State().Descriptions, nil
}

// RecordChat appends one chat turn. A reply that ends the conversation
// moves the session to the ended phase and keeps the farewell aside from
// the transcript. Error replies are shown but never end the conversation.
func (s *Session) RecordChat(message string, reply conversation.Reply) error {
	if s.state.Phase != PhaseFreeChat {
		return s.invalid("chat")
	}

	s.appendMessage(models.UserMessage(message))
	if reply.EndConversation && !reply.Error {
		s.state.ConversationEnded = true
		s.state.FarewellMessage = reply.Message
		s.setPhase(PhaseEnded)
		return nil
	}
	s.appendMessage(models.AssistantMessage(reply.Message))
	return nil
}

// Restart clears everything except the ID and creation time and asks the
// first question again.
func (s *Session) Restart(now time.Time) {
	from := s.state.Phase
	s.reset(now)
	if from != PhaseCollecting {
		metrics.SessionTransitions.WithLabelValues(string(from), string(PhaseCollecting)).Inc()
	}
}

func (s *Session) reset(now time.Time) {
	s.state = State{
		ID:           s.state.ID,
		CreatedAt:    s.state.CreatedAt,
		LastActivity: now,
		Phase:        PhaseCollecting,
		Transcript:   []models.Message{models.AssistantMessage(questions[0])},
	}
}

func (s *Session) setPhase(p Phase) {
	metrics.SessionTransitions.WithLabelValues(string(s.state.Phase), string(p)).Inc()
	s.state.Phase = p
}

func (s *Session) appendMessage(m models.Message) {
	s.state.Transcript = append(s.state.Transcript, m)
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, strings.ReplaceAll(string(s.state.Phase), "_", " "))
}
