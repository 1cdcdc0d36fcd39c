package interview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hireflow/interview/internal/models"
	"hireflow/interview/internal/questions"
	"hireflow/interview/internal/repositories"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type generatorCall struct {
	kind           string
	resumeSummary  string
	jobDescription string
	history        string
}

// fakeGenerator numbers its questions Q1, Q2, ... and records every call.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []generatorCall
	err     error
	block   chan struct{}
	started chan struct{}
	hook    func(ctx context.Context) error
}

func (g *fakeGenerator) GenerateFirst(ctx context.Context, resumeSummary, jobDescription string) (string, error) {
	return g.record(ctx, generatorCall{kind: models.GenerationFirst, resumeSummary: resumeSummary, jobDescription: jobDescription})
}

func (g *fakeGenerator) GenerateNext(ctx context.Context, resumeSummary, jobDescription, history string) (string, error) {
	return g.record(ctx, generatorCall{kind: models.GenerationNext, resumeSummary: resumeSummary, jobDescription: jobDescription, history: history})
}

func (g *fakeGenerator) record(ctx context.Context, call generatorCall) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	n := len(g.calls)
	err := g.err
	block, started, hook := g.block, g.started, g.hook
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if hook != nil {
		if err := hook(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", questions.ErrGenerationFailed, err)
		}
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Q%d", n), nil
}

func (g *fakeGenerator) Calls() []generatorCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]generatorCall, len(g.calls))
	copy(out, g.calls)
	return out
}

// countingStore wraps the repository and counts calls into it.
type countingStore struct {
	*repositories.SessionRepository
	mu    sync.Mutex
	calls int
	// beforeAnswer runs inside AnswerAndAppend before delegating
	beforeAnswer func(ctx context.Context, sessionID string, pendingID uint)
}

func (s *countingStore) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) GetByApplicationID(ctx context.Context, applicationID string) (*models.InterviewSession, error) {
	s.count()
	return s.SessionRepository.GetByApplicationID(ctx, applicationID)
}

func (s *countingStore) MarkStarted(ctx context.Context, sessionID string, at time.Time) (time.Time, bool, error) {
	s.count()
	return s.SessionRepository.MarkStarted(ctx, sessionID, at)
}

func (s *countingStore) AnswerAndAppend(ctx context.Context, sessionID string, pendingID uint, answer string, answeredAt time.Time, nextQuestion string) (*models.QnAPair, error) {
	s.count()
	if s.beforeAnswer != nil {
		s.beforeAnswer(ctx, sessionID, pendingID)
	}
	return s.SessionRepository.AnswerAndAppend(ctx, sessionID, pendingID, answer, answeredAt, nextQuestion)
}

type failingLocker struct{}

func (failingLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return nil, fmt.Errorf("lock %s: busy", key)
}
