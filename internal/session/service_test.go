// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/conversation"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/llm/llmtest"
	"github.com/tomtom215/cinematch/internal/lookup"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

type fakeClassifier struct{ verdict validation.Verdict }

func (f fakeClassifier) Classify(context.Context, string, string) validation.Verdict {
	return f.verdict
}

type fakePipeline struct {
	mu         sync.Mutex
	err        error
	prefs      []models.Preferences
	generated  []models.Recommendation
	describes  int
	chatReply  conversation.Reply
	chatCalls  int
	trailerURL string
	providers  string
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
}

func (f *fakePipeline) Retrieve(_ context.Context, prefs models.Preferences) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs = append(f.prefs, prefs)
	return "passage", f.err
}

func (f *fakePipeline) Generate(context.Context, models.Preferences, string) ([]models.Recommendation, error) {
	recs := make([]models.Recommendation, 9)
	for i := range recs {
		recs[i] = models.Recommendation{Title: string(rune('A' + i)), Reason: "because"}
	}
	return recs, nil
}

func (f *fakePipeline) Rerank(_ context.Context, recs []models.Recommendation) []models.Recommendation {
	if f.generated != nil {
		return f.generated
	}
	return recs[:3]
}

func (f *fakePipeline) Describe(_ context.Context, recs []models.Recommendation) []models.MovieDescription {
	f.mu.Lock()
	f.describes++
	f.mu.Unlock()
	out := make([]models.MovieDescription, len(recs))
	for i, r := range recs {
		out[i] = models.EmptyDescription(r.Title)
	}
	return out
}

func (f *fakePipeline) track() func() {
	n := f.inFlight.Add(1)
	for {
		peak := f.maxFlight.Load()
		if n <= peak || f.maxFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return func() { f.inFlight.Add(-1) }
}

func (f *fakePipeline) FindTrailer(context.Context, models.Recommendation) (string, bool) {
	defer f.track()()
	return f.trailerURL, f.trailerURL != ""
}

func (f *fakePipeline) FindProviders(context.Context, models.Recommendation, string) (string, bool) {
	defer f.track()()
	return f.providers, f.providers != ""
}

func (f *fakePipeline) Continue(context.Context, []models.Message, []models.MovieDescription, string) conversation.Reply {
	f.mu.Lock()
	f.chatCalls++
	f.mu.Unlock()
	return f.chatReply
}

func newTestService(p *fakePipeline, verdict validation.Verdict) *Service {
	svc := NewService(NewMemoryStore(), Deps{
		Classifier: fakeClassifier{verdict: verdict},
		Retriever:  p,
		Generator:  p,
		Reranker:   p,
		Describer:  p,
		Trailers:   p,
		Providers:  p,
		Chat:       p,
	}, &config.SessionConfig{TTL: time.Hour})
	svc.now = func() time.Time { return testNow }
	return svc
}

// answerAll walks a fresh session through the three questions.
func answerAll(t *testing.T, svc *Service) (string, AnswerResult) {
	t.Helper()
	ctx := context.Background()

	st, _, err := svc.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var res AnswerResult
	for _, a := range []string{"revenge", "thriller", "Denzel Washington"} {
		if res, err = svc.SubmitAnswer(ctx, st.ID, a); err != nil {
			t.Fatalf("SubmitAnswer(%q) error = %v", a, err)
		}
	}
	return st.ID, res
}

func TestServiceEndToEnd(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	id, res := answerAll(t, svc)
	if !res.Done || res.Message != FormatRecommendation(models.Recommendation{Title: "A", Reason: "because"}) {
		t.Errorf("last answer result = %+v", res)
	}
	if res.State.Phase != PhasePresenting || len(res.State.Recommendations) != 3 {
		t.Errorf("state = %+v", res.State)
	}
	if len(p.prefs) != 1 || p.prefs[0].Actors != "Denzel Washington" {
		t.Errorf("retrieval calls = %+v", p.prefs)
	}

	for i := 1; i <= 2; i++ {
		_, st, err := svc.Next(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if st.CurrentRecommendationIndex != i {
			t.Errorf("index = %d, want %d", st.CurrentRecommendationIndex, i)
		}
	}
	if _, _, err := svc.Next(ctx, id); !errors.Is(err, ErrNoMoreRecommendations) {
		t.Errorf("Next at end error = %v", err)
	}
}

func TestServiceSubmitAnswerValidation(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{}
	svc := newTestService(p, validation.VerdictNo)
	ctx := context.Background()

	st, welcome, err := svc.Create(ctx)
	if err != nil || welcome != Welcome() {
		t.Fatalf("Create = (%q, %v)", welcome, err)
	}

	if _, err := svc.SubmitAnswer(ctx, st.ID, "---"); !errors.Is(err, validation.ErrInvalidCharacters) {
		t.Errorf("invalid input error = %v", err)
	}
	got, _ := svc.Get(ctx, st.ID)
	if got.CurrentQuestionIndex != 0 || len(got.Transcript) != 1 {
		t.Errorf("rejected input changed state: %+v", got)
	}

	res, err := svc.SubmitAnswer(ctx, st.ID, "asdf qwer")
	if err != nil {
		t.Fatal(err)
	}
	if res.Warning != validation.LowConfidenceWarning || res.Message != Question(1) {
		t.Errorf("result = %+v", res)
	}
	if res.State.Preferences.Themes != "asdf qwer" {
		t.Errorf("answer not committed: %+v", res.State.Preferences)
	}
}

func TestServiceGenerationFailureAndRetry(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{err: errors.New("milvus unavailable")}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	id, res := answerAll(t, svc)
	if res.Message != GenerationErrorMessage || res.State.Phase != PhaseGenerating || res.State.RecommendationsGenerated {
		t.Fatalf("failed generation result = %+v", res)
	}

	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()

	msg, st, err := svc.Generate(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if st.Phase != PhasePresenting || msg != FormatRecommendation(st.Recommendations[0]) {
		t.Errorf("retry = (%q, %+v)", msg, st)
	}
	if _, _, err := svc.Generate(ctx, id); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Generate while presenting error = %v", err)
	}
}

func TestServiceEmptyGeneration(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{generated: []models.Recommendation{}}
	svc := newTestService(p, validation.VerdictYes)

	_, res := answerAll(t, svc)
	if res.Message != GenerationEmptyMessage || res.State.Phase != PhaseGenerating {
		t.Errorf("result = %+v", res)
	}
}

func TestServiceLookups(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{trailerURL: "https://www.youtube.com/watch?v=x", providers: "Available streaming platform in Germany for **A**: Netflix."}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	id, _ := answerAll(t, svc)

	trailer, providers, err := svc.Lookups(ctx, id, "Germany")
	if err != nil {
		t.Fatal(err)
	}
	if !trailer.Found || trailer.URL != p.trailerURL || trailer.Title != "A" {
		t.Errorf("trailer = %+v", trailer)
	}
	if !providers.Found || providers.Message != p.providers {
		t.Errorf("providers = %+v", providers)
	}
	if p.maxFlight.Load() != 2 {
		t.Errorf("lookups ran with max concurrency %d, want 2", p.maxFlight.Load())
	}
}

func TestServiceLookupsNotFound(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	id, _ := answerAll(t, svc)

	trailer, err := svc.Trailer(ctx, id)
	if err != nil || trailer.Found || trailer.Message != lookup.TrailerNotFound("A") {
		t.Errorf("Trailer = (%+v, %v)", trailer, err)
	}
	providers, err := svc.Providers(ctx, id, "Germany")
	if err != nil || providers.Found || providers.Message != lookup.ProvidersNotFound("A", "Germany") {
		t.Errorf("Providers = (%+v, %v)", providers, err)
	}

	st, _, _ := svc.Create(ctx)
	if _, err := svc.Trailer(ctx, st.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Trailer while collecting error = %v", err)
	}
}

func TestServiceChat(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{chatReply: conversation.Reply{Message: "Tony Scott directed it."}}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	id, _ := answerAll(t, svc)

	if _, _, err := svc.Chat(ctx, id, "who directed it"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Chat before start error = %v", err)
	}

	msg, st, err := svc.StartChat(ctx, id)
	if err != nil || msg != FreeChatIntro || st.Phase != PhaseFreeChat || len(st.Descriptions) != 3 {
		t.Fatalf("StartChat = (%q, %+v, %v)", msg, st, err)
	}

	reply, st, err := svc.Chat(ctx, id, "Who directed it?")
	if err != nil || reply.Message != "Tony Scott directed it." || st.Phase != PhaseFreeChat {
		t.Errorf("Chat = (%+v, %s, %v)", reply, st.Phase, err)
	}

	if _, _, err := svc.Chat(ctx, id, "!!!"); !errors.Is(err, validation.ErrInvalidCharacters) {
		t.Errorf("invalid chat error = %v", err)
	}
	if p.chatCalls != 1 {
		t.Errorf("chat calls = %d, want 1", p.chatCalls)
	}

	p.mu.Lock()
	p.chatReply = conversation.Reply{EndConversation: true, Message: conversation.DefaultFarewell}
	p.mu.Unlock()
	reply, st, err = svc.Chat(ctx, id, "thanks bye")
	if err != nil || !reply.EndConversation || st.Phase != PhaseEnded || st.FarewellMessage != conversation.DefaultFarewell {
		t.Errorf("farewell = (%+v, %+v, %v)", reply, st, err)
	}

	welcome, st, err := svc.Restart(ctx, id)
	if err != nil || welcome != Welcome() || st.Phase != PhaseCollecting {
		t.Errorf("Restart = (%q, %s, %v)", welcome, st.Phase, err)
	}
	if p.describes != 1 {
		t.Errorf("describes = %d, want 1", p.describes)
	}
}

func TestServiceExpiry(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	st, _, _ := svc.Create(ctx)
	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }

	if _, err := svc.Get(ctx, st.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get expired error = %v", err)
	}
	n, err := svc.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Errorf("Cleanup = (%d, %v)", n, err)
	}
	if err := svc.Delete(ctx, st.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete after cleanup error = %v", err)
	}
}

type recordingEvents struct {
	mu     sync.Mutex
	types  []events.Type
	shown  []string
	lookup map[string]string
}

func (r *recordingEvents) Publish(_ context.Context, typ events.Type, _ string, data map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, typ)
	switch typ {
	case events.TypeRecommendationShown:
		r.shown = append(r.shown, data["position"]+":"+data["title"])
	case events.TypeProvidersLookup:
		r.lookup = data
	}
}

func TestServiceEmitsEvents(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{
		trailerURL: "https://www.youtube.com/watch?v=abc",
		chatReply:  conversation.Reply{Message: "Sure."},
	}
	rec := &recordingEvents{}
	svc := newTestService(p, validation.VerdictYes)
	svc.deps.Events = rec
	ctx := context.Background()

	id, _ := answerAll(t, svc)
	if _, _, err := svc.Next(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Trailer(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Providers(ctx, id, "Canada"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.StartChat(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Chat(ctx, id, "Tell me more"); err != nil {
		t.Fatal(err)
	}
	p.mu.Lock()
	p.chatReply = conversation.Reply{EndConversation: true, Message: conversation.DefaultFarewell}
	p.mu.Unlock()
	if _, _, err := svc.Chat(ctx, id, "bye"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Restart(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	// Failed actions publish nothing.
	if _, _, err := svc.Next(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Next after delete error = %v", err)
	}

	want := []events.Type{
		events.TypeSessionCreated,
		events.TypeAnswerSubmitted,
		events.TypeAnswerSubmitted,
		events.TypeAnswerSubmitted,
		events.TypeRecommendationsGenerated,
		events.TypeRecommendationShown,
		events.TypeRecommendationShown,
		events.TypeTrailerLookup,
		events.TypeProvidersLookup,
		events.TypeChatStarted,
		events.TypeChatMessage,
		events.TypeChatMessage,
		events.TypeChatEnded,
		events.TypeSessionRestarted,
		events.TypeSessionDeleted,
	}
	if len(rec.types) != len(want) {
		t.Fatalf("events = %v, want %v", rec.types, want)
	}
	for i := range want {
		if rec.types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, rec.types[i], want[i])
		}
	}
	if len(rec.shown) != 2 || rec.shown[0] != "1:A" || rec.shown[1] != "2:B" {
		t.Errorf("shown = %v", rec.shown)
	}
	if rec.lookup["country"] != "Canada" || rec.lookup["found"] != "false" || rec.lookup["title"] != "B" {
		t.Errorf("providers lookup data = %v", rec.lookup)
	}
}

func TestServiceSerializesPerSession(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{}
	svc := newTestService(p, validation.VerdictYes)
	ctx := context.Background()

	st, _, _ := svc.Create(ctx)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SubmitAnswer(ctx, st.ID, "space exploration"); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	got, _ := svc.Get(ctx, st.ID)
	if failures.Load() != 0 || got.CurrentQuestionIndex != 2 {
		t.Errorf("index = %d failures = %d, want 2 and 0", got.CurrentQuestionIndex, failures.Load())
	}
	if svc.locks.size() != 0 {
		t.Errorf("lock table size = %d", svc.locks.size())
	}
}

var errDiskFull = errors.New("disk full")

type failingSaveStore struct {
	Store
	fail atomic.Bool
}

func (f *failingSaveStore) Save(ctx context.Context, st State) error {
	if f.fail.Load() {
		return errDiskFull
	}
	return f.Store.Save(ctx, st)
}

func TestServiceUnsavedActionsPublishNothing(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{err: errors.New("milvus unavailable")}
	rec := &recordingEvents{}
	svc := newTestService(p, validation.VerdictYes)
	store := &failingSaveStore{Store: svc.store}
	svc.store = store
	svc.deps.Events = rec
	ctx := context.Background()

	st, _, err := svc.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []string{"revenge", "thriller"} {
		if _, err := svc.SubmitAnswer(ctx, st.ID, a); err != nil {
			t.Fatal(err)
		}
	}
	published := len(rec.types)

	store.fail.Store(true)
	if _, err := svc.SubmitAnswer(ctx, st.ID, "Denzel Washington"); !errors.Is(err, errDiskFull) {
		t.Fatalf("SubmitAnswer error = %v, want %v", err, errDiskFull)
	}
	if len(rec.types) != published {
		t.Errorf("events after failed save = %v", rec.types[published:])
	}
	got, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Phase != PhaseCollecting || got.CurrentQuestionIndex != 2 {
		t.Errorf("state after failed save = %+v", got)
	}

	// Reach the retry point, then fail the retry's save.
	store.fail.Store(false)
	if _, err := svc.SubmitAnswer(ctx, st.ID, "Denzel Washington"); err != nil {
		t.Fatal(err)
	}
	published = len(rec.types)
	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()

	store.fail.Store(true)
	if _, _, err := svc.Generate(ctx, st.ID); !errors.Is(err, errDiskFull) {
		t.Fatalf("Generate error = %v, want %v", err, errDiskFull)
	}
	if len(rec.types) != published {
		t.Errorf("events after failed save = %v", rec.types[published:])
	}

	store.fail.Store(false)
	if _, _, err := svc.Generate(ctx, st.ID); err != nil {
		t.Fatal(err)
	}
	tail := rec.types[published:]
	if len(tail) != 2 || tail[0] != events.TypeRecommendationsGenerated || tail[1] != events.TypeRecommendationShown {
		t.Errorf("events after saved retry = %v", tail)
	}
}

// Not parallel: GenerationsTotal is shared by every test in the package.
func TestServiceCountsEachGenerationOnce(t *testing.T) {
	items := make([]map[string]string, recommend.GeneratedCount)
	for i := range items {
		items[i] = map[string]string{"title": fmt.Sprintf("Movie %d", i+1), "reason": "Fits."}
	}
	model := llmtest.Reply(llmtest.JSON(map[string]interface{}{"recommendations": items}), nil)

	p := &fakePipeline{}
	svc := newTestService(p, validation.VerdictYes)
	svc.deps.Generator = recommend.NewGenerator(model)

	success := metrics.GenerationsTotal.WithLabelValues("success")
	before := testutil.ToFloat64(success)

	_, res := answerAll(t, svc)
	if res.State.Phase != PhasePresenting {
		t.Fatalf("result = %+v", res)
	}
	if got := testutil.ToFloat64(success) - before; got != 1 {
		t.Errorf("generations counted = %v, want 1", got)
	}
}
