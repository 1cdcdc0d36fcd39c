package interview

import (
	"strings"

	"hireflow/interview/internal/models"
)

// Status is the session state evaluated for one request.
type Status string

const (
	StatusUninitialized    Status = "uninitialized"
	StatusActiveNoQuestion Status = "active_no_question"
	StatusActivePending    Status = "active_pending"
	StatusActiveAnswered   Status = "active_answered"
	StatusExpired          Status = "expired"
)

// Snapshot is the view of a session returned to callers.
type Snapshot struct {
	SessionID     string
	ApplicationID string
	Status        Status
	QnAs          []models.QnAPair
	Current       *models.QnAPair
	InterviewOver bool
	TimeLeft      int
}

// Answered returns only the pairs that have an answer, in order.
func (s *Snapshot) Answered() []models.QnAPair {
	answered := make([]models.QnAPair, 0, len(s.QnAs))
	for _, pair := range s.QnAs {
		if !pair.IsPending() {
			answered = append(answered, pair)
		}
	}
	return answered
}

// ConversationHistory serializes answered pairs as "Q. question\nA. answer" lines.
// pairs must already be in creation order.
func ConversationHistory(pairs []models.QnAPair) string {
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair.IsPending() {
			continue
		}
		lines = append(lines, "Q. "+pair.Question+"\nA. "+pair.Answer)
	}
	return strings.Join(lines, "\n")
}

func pendingPair(pairs []models.QnAPair) *models.QnAPair {
	for i := len(pairs) - 1; i >= 0; i-- {
		if pairs[i].IsPending() {
			pair := pairs[i]
			return &pair
		}
	}
	return nil
}
