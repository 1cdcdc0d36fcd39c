package interview

import (
	"errors"
	"fmt"

	"hireflow/interview/internal/questions"
)

var (
	// ErrNotFound means no session exists for the application.
	ErrNotFound = errors.New("interview session not found")
	// ErrInvalidInput is returned for a missing or oversized answer, before any state is read.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoPendingQuestion rejects an answer when there is no question waiting for one.
	ErrNoPendingQuestion = fmt.Errorf("%w: no pending question to answer", ErrInvalidInput)
	// ErrInterviewOver is returned by writes after the deadline.
	ErrInterviewOver = errors.New("interview is over")
	// ErrConcurrentModification means another request changed the session first.
	ErrConcurrentModification = errors.New("interview session was modified concurrently")
	// ErrGenerationFailed means no question could be produced; nothing was persisted.
	ErrGenerationFailed = questions.ErrGenerationFailed
)
