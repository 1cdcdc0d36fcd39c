package models

// QnAView is a question/answer pair as shown to clients.
type QnAView struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InterviewStateResponse is returned by both the poll and the submit endpoints.
type InterviewStateResponse struct {
	QnAs              []QnAView `json:"qnas"`
	CurrentQuestion   *string   `json:"currentQuestion"`
	CurrentQuestionID *uint     `json:"currentQuestionId"`
	InterviewOver     bool      `json:"interviewOver"`
	TimeLeft          int       `json:"timeLeft"`
	Error             string    `json:"error,omitempty"`
}

// TranscriptResponse is the recruiter's view of a session.
type TranscriptResponse struct {
	ApplicationID string    `json:"applicationId"`
	Started       bool      `json:"started"`
	InterviewOver bool      `json:"interviewOver"`
	QnAs          []QnAView `json:"qnas"`
}

type MyApplicationResponse struct {
	ApplicationID string `json:"applicationId"`
}

type RephraseResponse struct {
	Rephrased string `json:"rephrased"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
