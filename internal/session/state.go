// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// Errors returned by session operations.
var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidTransition is returned when an action is not allowed in the
	// current phase.
	ErrInvalidTransition = errors.New("action not allowed in current phase")

	// ErrNoMoreRecommendations is returned by Next at the last recommendation.
	ErrNoMoreRecommendations = errors.New("no more recommendations")
)

// Phase is the coarse state of a conversation.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseGenerating Phase = "generating"
	PhasePresenting Phase = "presenting"
	PhaseFreeChat   Phase = "free_chat"
	PhaseEnded      Phase = "ended"
)

// QuestionCount is the number of scripted preference questions.
const QuestionCount = 3

// Texts shown to the user.
const (
	WelcomeMessage = "Hi! I'm an AI-powered movie recommendation assistant, optimized for discovering the latest films.\n" +
		"My goal is to help you find the perfect pick for your next movie night. 🍿\n\n" +
		"To understand your preferences better, I'd love to ask you a few quick questions.\n\n"

	ContinueConversationMessage = "Continue conversation"
	FreeChatIntro               = "Feel free to ask me about the recommended movies (e.g., ratings, reviews, actors) or movies in general."

	GenerationErrorMessage = "I apologize, but I encountered an error while generating recommendations. Please try again."
	GenerationEmptyMessage = "Sorry, I couldn't find any recommendations based on your preferences."
)

var questions = [QuestionCount]string{
	"What particular topics, themes, or storylines are you interested in? (e.g., self-discovery, space exploration, coming of age, historical events)",
	"What genres do you typically enjoy? (e.g., comedy, action, drama, sci-fi)",
	"Which actors or actresses do you like? (e.g., Margot Robbie, Florence Pugh, Ryan Gosling, Timothée Chalamet)",
}

// Question returns the scripted question at index, or "" past the last one.
func Question(index int) string {
	if index < 0 || index >= QuestionCount {
		return ""
	}
	return questions[index]
}

// Welcome is the greeting followed by the first question.
func Welcome() string {
	return WelcomeMessage + questions[0]
}

// FormatRecommendation renders the message that presents one movie.
func FormatRecommendation(rec models.Recommendation) string {
	return fmt.Sprintf("🎬 Here's a movie you might enjoy:\n\n**%s**\n\n%s\n\nWhat would you like to do next?", rec.Title, rec.Reason)
}

// State is the persisted record of one conversation.
type State struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Phase        Phase     `json:"phase"`

	CurrentQuestionIndex int                `json:"current_question_index"`
	Preferences          models.Preferences `json:"preferences"`

	RecommendationsGenerated   bool                    `json:"recommendations_generated"`
	Recommendations            []models.Recommendation `json:"recommendation_list"`
	CurrentRecommendationIndex int                     `json:"current_recommendation_index"`

	FreeChatActive    bool   `json:"free_chat_active"`
	ConversationEnded bool   `json:"conversation_ended"`
	FarewellMessage   string `json:"farewell_message,omitempty"`

	Transcript   []models.Message          `json:"transcript"`
	Descriptions []models.MovieDescription `json:"descriptions,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Recommendations = cloneSlice(s.Recommendations)
	out.Transcript = cloneSlice(s.Transcript)
	if s.Descriptions != nil {
		out.Descriptions = make([]models.MovieDescription, len(s.Descriptions))
		for i, d := range s.Descriptions {
			out.Descriptions[i] = cloneDescription(d)
		}
	}
	return out
}

// Expired reports whether the session has been idle longer than ttl.
func (s State) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastActivity) > ttl
}

// HasNext reports whether another recommendation can be presented.
func (s State) HasNext() bool {
	return s.Phase == PhasePresenting && s.CurrentRecommendationIndex < len(s.Recommendations)-1
}

func cloneDescription(d models.MovieDescription) models.MovieDescription {
	d.Genres = cloneSlice(d.Genres)
	d.Cast = cloneSlice(d.Cast)
	d.Crew = cloneSlice(d.Crew)
	d.Reviews = cloneSlice(d.Reviews)
	d.ProductionCompanies = cloneSlice(d.ProductionCompanies)
	d.ProductionCountries = cloneSlice(d.ProductionCountries)
	return d
}

// cloneSlice copies s, keeping nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
