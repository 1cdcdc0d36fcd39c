// Package interview runs the timed question/answer loop for one interview session.
//
// Every request re-evaluates the session from storage. Transitions that call the
// generator hold a per-session lock and re-read the session once the lock is held,
// so a session never gets two pending questions and an answer is consumed once.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"hireflow/interview/internal/deadline"
	"hireflow/interview/internal/locks"
	"hireflow/interview/internal/metrics"
	"hireflow/interview/internal/models"
	"hireflow/interview/internal/questions"
	"hireflow/interview/internal/repositories"
)

const (
	DefaultGenerationTimeout = 30 * time.Second
	DefaultLockWait          = 35 * time.Second

	lockKeyPrefix = "interview:"
)

// SessionStore is the persistence the engine needs.
type SessionStore interface {
	GetByApplicationID(ctx context.Context, applicationID string) (*models.InterviewSession, error)
	MarkStarted(ctx context.Context, sessionID string, at time.Time) (time.Time, bool, error)
	AppendQuestion(ctx context.Context, sessionID, question string, createdAt time.Time) (*models.QnAPair, error)
	AnswerAndAppend(ctx context.Context, sessionID string, pendingID uint, answer string, answeredAt time.Time, nextQuestion string) (*models.QnAPair, error)
}

// Options tune an Engine. Zero values select defaults.
type Options struct {
	Clock             func() time.Time
	GenerationTimeout time.Duration
	LockWait          time.Duration
}

type Engine struct {
	store     SessionStore
	generator questions.Generator
	locker    locks.Locker
	policy    deadline.Policy
	logger    *zap.Logger

	now               func() time.Time
	generationTimeout time.Duration
	lockWait          time.Duration
}

func NewEngine(store SessionStore, generator questions.Generator, locker locks.Locker, policy deadline.Policy, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = locks.NewKeyedMutex()
	}
	if policy.Duration <= 0 {
		policy = deadline.NewPolicy(0)
	}
	e := &Engine{
		store:             store,
		generator:         generator,
		locker:            locker,
		policy:            policy,
		logger:            logger,
		now:               time.Now,
		generationTimeout: DefaultGenerationTimeout,
		lockWait:          DefaultLockWait,
	}
	if opts.Clock != nil {
		e.now = opts.Clock
	}
	if opts.GenerationTimeout > 0 {
		e.generationTimeout = opts.GenerationTimeout
	}
	if opts.LockWait > 0 {
		e.lockWait = opts.LockWait
	}
	return e
}

// State is the poll path. It starts the clock on first access and makes sure an
// active session has a pending question, generating one if needed.
func (e *Engine) State(ctx context.Context, applicationID string) (*Snapshot, error) {
	session, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := e.ensureStarted(ctx, session); err != nil {
		return nil, err
	}

	snap := e.evaluate(session)
	if snap.Status == StatusExpired || snap.Status == StatusActivePending {
		return snap, nil
	}

	release, err := e.acquire(ctx, session.ID, "poll")
	if err != nil {
		return nil, err
	}
	defer release()

	// the generation result is kept even if the caller goes away
	work := context.WithoutCancel(ctx)

	session, err = e.load(work, applicationID)
	if err != nil {
		return nil, err
	}
	snap = e.evaluate(session)
	if snap.Status == StatusExpired || snap.Status == StatusActivePending {
		return snap, nil
	}

	log := e.logger.With(zap.String("application_id", applicationID), zap.String("session_id", session.ID))

	question, err := e.generate(work, session, session.QnAs)
	if err != nil {
		log.Error("failed to generate question", zap.Error(err))
		return nil, err
	}

	pair, err := e.store.AppendQuestion(work, session.ID, question, e.clock())
	if errors.Is(err, repositories.ErrPendingQuestionExists) {
		// another replica won despite the lock; serve what it stored
		log.Warn("pending question appeared while generating")
		return e.reloadSnapshot(work, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("persist question: %w", err)
	}

	log.Info("question created", zap.Uint("qna_id", pair.ID), zap.Int("pairs", len(session.QnAs)+1))
	session.QnAs = append(session.QnAs, *pair)
	return e.evaluate(session), nil
}

// SubmitAnswer is the write path. questionID, when non-zero, must name the
// pending question; a mismatch is reported as ErrConcurrentModification. When
// zero, the question pending at request arrival is used, so a duplicate
// submission racing the first one cannot land on the next question.
func (e *Engine) SubmitAnswer(ctx context.Context, applicationID, answer string, questionID uint) (*Snapshot, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(answer) > models.MaxAnswerLength {
		return nil, fmt.Errorf("%w: answer exceeds %d characters", ErrInvalidInput, models.MaxAnswerLength)
	}

	session, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := e.ensureStarted(ctx, session); err != nil {
		return nil, err
	}
	seen := e.evaluate(session)
	if seen.Status == StatusExpired {
		return seen, ErrInterviewOver
	}
	// without an explicit id the answer targets the question pending before the lock
	if questionID == 0 && seen.Current != nil {
		questionID = seen.Current.ID
	}

	release, err := e.acquire(ctx, session.ID, "submit")
	if err != nil {
		return nil, err
	}
	defer release()

	work := context.WithoutCancel(ctx)

	session, err = e.load(work, applicationID)
	if err != nil {
		return nil, err
	}
	snap := e.evaluate(session)
	if snap.Status == StatusExpired {
		return snap, ErrInterviewOver
	}
	if snap.Current == nil {
		return nil, ErrNoPendingQuestion
	}

	pending := snap.Current
	if questionID != 0 && questionID != pending.ID {
		metrics.ConcurrentModification("submit")
		return nil, fmt.Errorf("%w: question %d is no longer pending", ErrConcurrentModification, questionID)
	}

	log := e.logger.With(
		zap.String("application_id", applicationID),
		zap.String("session_id", session.ID),
		zap.Uint("qna_id", pending.ID))

	// history as it will be once this answer lands
	withAnswer := make([]models.QnAPair, len(session.QnAs))
	copy(withAnswer, session.QnAs)
	for i := range withAnswer {
		if withAnswer[i].ID == pending.ID {
			withAnswer[i].Answer = answer
		}
	}

	question, err := e.generate(work, session, withAnswer)
	if err != nil {
		log.Error("failed to generate next question", zap.Error(err))
		return nil, err
	}

	answeredAt := e.clock()
	next, err := e.store.AnswerAndAppend(work, session.ID, pending.ID, answer, answeredAt, question)
	if errors.Is(err, repositories.ErrAlreadyAnswered) {
		metrics.ConcurrentModification("submit")
		return nil, fmt.Errorf("%w: question %d was already answered", ErrConcurrentModification, pending.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}

	log.Info("answer recorded", zap.Uint("next_qna_id", next.ID))

	for i := range withAnswer {
		if withAnswer[i].ID == pending.ID {
			withAnswer[i].AnsweredAt = &answeredAt
		}
	}
	session.QnAs = append(withAnswer, *next)
	return e.evaluate(session), nil
}

// Transcript returns the session as stored. It never starts the clock or generates.
func (e *Engine) Transcript(ctx context.Context, applicationID string) (*Snapshot, error) {
	session, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return e.evaluate(session), nil
}

func (e *Engine) clock() time.Time {
	return e.now().UTC()
}

func (e *Engine) load(ctx context.Context, applicationID string) (*models.InterviewSession, error) {
	session, err := e.store.GetByApplicationID(ctx, applicationID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

func (e *Engine) reloadSnapshot(ctx context.Context, applicationID string) (*Snapshot, error) {
	session, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return e.evaluate(session), nil
}

// ensureStarted sets the start time once; concurrent first requests all see the winner's value.
func (e *Engine) ensureStarted(ctx context.Context, session *models.InterviewSession) error {
	if session.StartTime != nil {
		return nil
	}

	start, started, err := e.store.MarkStarted(ctx, session.ID, e.clock())
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if started {
		metrics.InterviewStarted()
		e.logger.Info("interview started",
			zap.String("application_id", session.ApplicationID),
			zap.String("session_id", session.ID),
			zap.Time("start_time", start))
	}
	session.StartTime = &start
	return nil
}

func (e *Engine) acquire(ctx context.Context, sessionID, operation string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, e.lockWait)
	defer cancel()

	release, err := e.locker.Acquire(lockCtx, lockKeyPrefix+sessionID)
	if err != nil {
		metrics.ConcurrentModification(operation)
		return nil, fmt.Errorf("%w: %w", ErrConcurrentModification, err)
	}
	return release, nil
}

// generate asks for the first question when there are no pairs, otherwise the next one.
func (e *Engine) generate(ctx context.Context, session *models.InterviewSession, pairs []models.QnAPair) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, e.generationTimeout)
	defer cancel()

	jobDescription := session.Application.Job.Description
	if len(pairs) == 0 {
		return e.generator.GenerateFirst(genCtx, session.ResumeSummary, jobDescription)
	}
	return e.generator.GenerateNext(genCtx, session.ResumeSummary, jobDescription, ConversationHistory(pairs))
}

func (e *Engine) evaluate(session *models.InterviewSession) *Snapshot {
	snap := &Snapshot{
		SessionID:     session.ID,
		ApplicationID: session.ApplicationID,
		QnAs:          session.QnAs,
	}

	if session.StartTime == nil {
		snap.Status = StatusUninitialized
		snap.TimeLeft = int(e.policy.Duration.Seconds())
		return snap
	}

	status := e.policy.Evaluate(*session.StartTime, e.clock())
	snap.TimeLeft = status.RemainingSeconds
	if status.IsOver {
		snap.Status = StatusExpired
		snap.InterviewOver = true
		return snap
	}

	snap.Current = pendingPair(session.QnAs)
	switch {
	case snap.Current != nil:
		snap.Status = StatusActivePending
	case len(session.QnAs) == 0:
		snap.Status = StatusActiveNoQuestion
	default:
		snap.Status = StatusActiveAnswered
	}
	return snap
}
