// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/conversation"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/lookup"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Collaborators used by Service. The concrete types live in the validation,
// retrieval, recommend, lookup and conversation packages.
type (
	Classifier interface {
		Classify(ctx context.Context, question, answer string) validation.Verdict
	}
	Retriever interface {
		Retrieve(ctx context.Context, prefs models.Preferences) (string, error)
	}
	Generator interface {
		Generate(ctx context.Context, prefs models.Preferences, retrieved string) ([]models.Recommendation, error)
	}
	Reranker interface {
		Rerank(ctx context.Context, recs []models.Recommendation) []models.Recommendation
	}
	Describer interface {
		Describe(ctx context.Context, recs []models.Recommendation) []models.MovieDescription
	}
	TrailerFinder interface {
		FindTrailer(ctx context.Context, rec models.Recommendation) (string, bool)
	}
	ProviderFinder interface {
		FindProviders(ctx context.Context, rec models.Recommendation, country string) (string, bool)
	}
	Chatter interface {
		Continue(ctx context.Context, transcript []models.Message, descriptions []models.MovieDescription, userMessage string) conversation.Reply
	}
	EventPublisher interface {
		Publish(ctx context.Context, typ events.Type, sessionID string, data map[string]string)
	}
)

// Deps bundles the collaborators of a Service. Classifier may be nil, in
// which case answers are never flagged. Events may be nil to disable the
// activity stream.
type Deps struct {
	Classifier Classifier
	Retriever  Retriever
	Generator  Generator
	Reranker   Reranker
	Describer  Describer
	Trailers   TrailerFinder
	Providers  ProviderFinder
	Chat       Chatter
	Events     EventPublisher
}

// AnswerResult is the outcome of SubmitAnswer.
type AnswerResult struct {
	State State
	// Warning is set when the classifier doubts the answer. The answer is
	// committed regardless.
	Warning string
	// Message is the next question, or the first recommendation or an
	// apology once the last answer triggered generation.
	Message string
	Done    bool
}

// LookupResult is the outcome of a trailer or provider lookup.
type LookupResult struct {
	Title string `json:"title"`
	Found bool   `json:"found"`
	// URL is set for trailers only.
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

// Service runs conversation actions against a Store.
type Service struct {
	store Store
	deps  Deps
	ttl   time.Duration
	locks *keyedMutex
	now   func() time.Time
}

// NewService creates a session service.
func NewService(store Store, deps Deps, cfg *config.SessionConfig) *Service {
	return &Service{
		store: store,
		deps:  deps,
		ttl:   cfg.TTL,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Create starts a new session and returns it with the welcome text.
func (s *Service) Create(ctx context.Context) (State, string, error) {
	sess := New(uuid.NewString(), s.now())
	if err := s.store.Save(ctx, sess.State()); err != nil {
		return State{}, "", fmt.Errorf("save session: %w", err)
	}
	s.refreshActive(ctx)

	logging.Ctx(ctx).Info().Str("session_id", sess.State().ID).Msg("Session created")
	s.emit(ctx, events.TypeSessionCreated, sess.State().ID, nil)
	return sess.State(), Welcome(), nil
}

// Get returns the stored state of a session.
func (s *Service) Get(ctx context.Context, id string) (State, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return State{}, err
	}
	return st.State(), nil
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.refreshActive(ctx)
	s.emit(ctx, events.TypeSessionDeleted, id, nil)
	return nil
}

// SubmitAnswer validates and commits an answer to the current question.
// The third answer runs generation before returning. Input that
// validation.CleanInputText rejects is returned as an error and leaves the
// session unchanged.
func (s *Service) SubmitAnswer(ctx context.Context, id, text string) (AnswerResult, error) {
	var result AnswerResult
	var out outbox
	err := s.update(ctx, id, func(ctx context.Context, sess *Session) error {
		question := sess.CurrentQuestion()
		if question == "" {
			return sess.invalid("submit answer")
		}

		cleaned, err := validation.CleanInputText(text)
		if err != nil {
			return err
		}
		if s.deps.Classifier != nil && s.deps.Classifier.Classify(ctx, question, cleaned).LowConfidence() {
			result.Warning = validation.LowConfidenceWarning
		}

		index := sess.State().CurrentQuestionIndex
		next, done, err := sess.SubmitAnswer(text)
		if err != nil {
			return err
		}
		out.add(events.TypeAnswerSubmitted, id, map[string]string{
			"question_index": strconv.Itoa(index),
			"low_confidence": strconv.FormatBool(result.Warning != ""),
		})
		result.Message, result.Done = next, done
		if done {
			result.Message, err = s.generate(ctx, sess, &out)
		}
		return err
	})
	if err != nil {
		return AnswerResult{}, err
	}
	s.flush(ctx, out)
	result.State, _ = s.Get(ctx, id)
	return result, nil
}

// Generate retries generation for a session whose previous attempt failed.
func (s *Service) Generate(ctx context.Context, id string) (string, State, error) {
	var out outbox
	msg, st, err := s.step(ctx, id, func(ctx context.Context, sess *Session) (string, error) {
		return s.generate(ctx, sess, &out)
	})
	if err == nil {
		s.flush(ctx, out)
	}
	return msg, st, err
}

// Next presents the following recommendation.
func (s *Service) Next(ctx context.Context, id string) (string, State, error) {
	msg, st, err := s.step(ctx, id, func(_ context.Context, sess *Session) (string, error) {
		return sess.Next()
	})
	if err == nil {
		s.emitShown(ctx, st)
	}
	return msg, st, err
}

// StartChat enters free chat, describing the recommendations on first use.
func (s *Service) StartChat(ctx context.Context, id string) (string, State, error) {
	msg, st, err := s.step(ctx, id, func(ctx context.Context, sess *Session) (string, error) {
		if _, err := sess.Current(); err != nil {
			return "", err
		}
		var descriptions []models.MovieDescription
		if sess.NeedsDescriptions() {
			descriptions = s.deps.Describer.Describe(ctx, sess.Recommendations())
		}
		return sess.StartFreeChat(descriptions)
	})
	if err == nil {
		s.emit(ctx, events.TypeChatStarted, id, nil)
	}
	return msg, st, err
}

// Chat answers a free-chat message. Messages rejected by
// validation.CleanInputText are returned as errors.
func (s *Service) Chat(ctx context.Context, id, message string) (conversation.Reply, State, error) {
	var reply conversation.Reply
	_, st, err := s.step(ctx, id, func(ctx context.Context, sess *Session) (string, error) {
		transcript, descriptions, err := sess.ChatContext()
		if err != nil {
			return "", err
		}
		if _, err := validation.CleanInputText(message); err != nil {
			return "", err
		}

		reply = s.deps.Chat.Continue(ctx, transcript, descriptions, message)
		return reply.Message, sess.RecordChat(message, reply)
	})
	if err == nil {
		s.emit(ctx, events.TypeChatMessage, id, map[string]string{"error": strconv.FormatBool(reply.Error)})
		if reply.EndConversation {
			s.emit(ctx, events.TypeChatEnded, id, nil)
		}
	}
	return reply, st, err
}

// Restart clears a session back to the first question.
func (s *Service) Restart(ctx context.Context, id string) (string, State, error) {
	msg, st, err := s.step(ctx, id, func(_ context.Context, sess *Session) (string, error) {
		sess.Restart(s.now())
		return Welcome(), nil
	})
	if err == nil {
		s.emit(ctx, events.TypeSessionRestarted, id, nil)
	}
	return msg, st, err
}

// Trailer looks up the trailer of the recommendation on screen.
func (s *Service) Trailer(ctx context.Context, id string) (LookupResult, error) {
	var result LookupResult
	err := s.read(ctx, id, func(ctx context.Context, rec models.Recommendation) error {
		result = s.trailer(ctx, rec)
		return nil
	})
	return result, err
}

// Providers looks up where the recommendation on screen can be streamed.
func (s *Service) Providers(ctx context.Context, id, country string) (LookupResult, error) {
	var result LookupResult
	err := s.read(ctx, id, func(ctx context.Context, rec models.Recommendation) error {
		result = s.providers(ctx, rec, country)
		return nil
	})
	return result, err
}

// Lookups runs the trailer and provider lookups concurrently.
func (s *Service) Lookups(ctx context.Context, id, country string) (trailer, providers LookupResult, err error) {
	err = s.read(ctx, id, func(ctx context.Context, rec models.Recommendation) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			trailer = s.trailer(gctx, rec)
			return nil
		})
		g.Go(func() error {
			providers = s.providers(gctx, rec, country)
			return nil
		})
		return g.Wait()
	})
	return trailer, providers, err
}

// Cleanup deletes sessions idle for longer than the configured TTL.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	removed, err := s.store.DeleteIdle(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	if len(removed) > 0 {
		metrics.SessionsExpired.Add(float64(len(removed)))
		logging.Ctx(ctx).Info().Int("count", len(removed)).Msg("Expired idle sessions")
	}
	for _, id := range removed {
		s.emit(ctx, events.TypeSessionExpired, id, nil)
	}
	s.refreshActive(ctx)
	return len(removed), nil
}

// Count returns the number of stored sessions, idle ones included until
// the next Cleanup. It doubles as a store health check.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *Service) trailer(ctx context.Context, rec models.Recommendation) LookupResult {
	url, found := s.deps.Trailers.FindTrailer(ctx, rec)
	s.emit(ctx, events.TypeTrailerLookup, logging.SessionIDFromContext(ctx), map[string]string{
		"title": rec.Title,
		"found": strconv.FormatBool(found),
	})
	if !found {
		return LookupResult{Title: rec.Title, Message: lookup.TrailerNotFound(rec.Title)}
	}
	return LookupResult{Title: rec.Title, Found: true, URL: url, Message: url}
}

func (s *Service) providers(ctx context.Context, rec models.Recommendation, country string) LookupResult {
	sentence, found := s.deps.Providers.FindProviders(ctx, rec, country)
	s.emit(ctx, events.TypeProvidersLookup, logging.SessionIDFromContext(ctx), map[string]string{
		"title":   rec.Title,
		"country": country,
		"found":   strconv.FormatBool(found),
	})
	if !found {
		return LookupResult{Title: rec.Title, Message: lookup.ProvidersNotFound(rec.Title, country)}
	}
	return LookupResult{Title: rec.Title, Found: true, Message: sentence}
}

// generate runs retrieval, generation and reranking for a session in the
// generating phase. External failures become an apology, not an error.
// Events are queued on out for the caller to publish after saving.
func (s *Service) generate(ctx context.Context, sess *Session, out *outbox) (string, error) {
	prefs, err := sess.Preferences()
	if err != nil {
		return "", err
	}
	logger := logging.Ctx(ctx)

	id := sess.State().ID

	recs, err := s.recommend(ctx, prefs)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Msg("Recommendation generation failed")
		out.add(events.TypeGenerationFailed, id, map[string]string{"reason": "error"})
		return sess.FailGeneration()
	}
	if len(recs) == 0 {
		metrics.GenerationsTotal.WithLabelValues("empty").Inc()
		out.add(events.TypeGenerationFailed, id, map[string]string{"reason": "empty"})
		return sess.CompleteGeneration(recs)
	}

	metrics.GenerationsTotal.WithLabelValues("success").Inc()
	msg, err := sess.CompleteGeneration(recs)
	if err != nil {
		return "", err
	}
	out.add(events.TypeRecommendationsGenerated, id, map[string]string{"count": strconv.Itoa(len(recs))})
	out.addShown(sess.State())
	return msg, nil
}

func (s *Service) recommend(ctx context.Context, prefs models.Preferences) ([]models.Recommendation, error) {
	retrieved, err := s.deps.Retriever.Retrieve(ctx, prefs)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	generated, err := s.deps.Generator.Generate(ctx, prefs, retrieved)
	if err != nil {
		return nil, fmt.Errorf("generate recommendations: %w", err)
	}
	return s.deps.Reranker.Rerank(ctx, generated), nil
}

// step applies fn to a session under its lock and saves the result. State
// is saved only when fn succeeds.
func (s *Service) step(ctx context.Context, id string, fn func(context.Context, *Session) (string, error)) (string, State, error) {
	var msg string
	err := s.update(ctx, id, func(ctx context.Context, sess *Session) error {
		var err error
		msg, err = fn(ctx, sess)
		return err
	})
	if err != nil {
		return "", State{}, err
	}
	st, err := s.Get(ctx, id)
	return msg, st, err
}

func (s *Service) update(ctx context.Context, id string, fn func(context.Context, *Session) error) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	ctx = logging.ContextWithSessionID(ctx, id)

	if err := fn(ctx, sess); err != nil {
		return err
	}
	sess.Touch(s.now())
	if err := s.store.Save(ctx, sess.State()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// read runs fn on the current recommendation under the session lock without
// changing the stored state.
func (s *Service) read(ctx context.Context, id string, fn func(context.Context, models.Recommendation) error) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	rec, err := sess.Current()
	if err != nil {
		return err
	}
	return fn(logging.ContextWithSessionID(ctx, id), rec)
}

// load fetches a session, treating idle sessions as missing.
func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if st.Expired(s.now(), s.ttl) {
		return nil, ErrSessionNotFound
	}
	return FromState(st), nil
}

func (s *Service) emit(ctx context.Context, typ events.Type, id string, data map[string]string) {
	if s.deps.Events != nil {
		s.deps.Events.Publish(ctx, typ, id, data)
	}
}

func (s *Service) emitShown(ctx context.Context, st State) {
	var out outbox
	out.addShown(st)
	s.flush(ctx, out)
}

func (s *Service) flush(ctx context.Context, out outbox) {
	for _, e := range out {
		s.emit(ctx, e.typ, e.id, e.data)
	}
}

// outbox queues events raised while a session is locked. Nothing in it is
// published unless the session is saved.
type outbox []pendingEvent

type pendingEvent struct {
	typ  events.Type
	id   string
	data map[string]string
}

func (o *outbox) add(typ events.Type, id string, data map[string]string) {
	*o = append(*o, pendingEvent{typ: typ, id: id, data: data})
}

func (o *outbox) addShown(st State) {
	i := st.CurrentRecommendationIndex
	if i < 0 || i >= len(st.Recommendations) {
		return
	}
	o.add(events.TypeRecommendationShown, st.ID, map[string]string{
		"title":    st.Recommendations[i].Title,
		"position": strconv.Itoa(i + 1),
	})
}

func (s *Service) refreshActive(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		metrics.SessionsActive.Set(float64(n))
	}
}
