package models

import (
	"strings"
	"unicode/utf8"
)

// SubmitAnswerRequest is the body of POST /interviews/{applicationId}/qna.
// QuestionID is optional; when set it must name the current pending question.
type SubmitAnswerRequest struct {
	Answer     string `json:"answer" validate:"required,max=20000"`
	QuestionID uint   `json:"questionId,omitempty"`
}

// implements the Validator interface
func (r *SubmitAnswerRequest) Validate() error {
	r.Answer = strings.TrimSpace(r.Answer)
	if r.Answer == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "Answer is required",
		}
	}
	if utf8.RuneCountInString(r.Answer) > MaxAnswerLength {
		return &ErrorResponse{
			Code:    "answer_too_long",
			Message: "Answer exceeds the maximum allowed length",
		}
	}
	return nil
}

type RephraseRequest struct {
	Description string `json:"description" validate:"required,max=10000"`
}

func (r *RephraseRequest) Validate() error {
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return &ErrorResponse{Code: "missing_description", Message: "description is required"}
	}
	if utf8.RuneCountInString(r.Description) > MaxDescriptionLength {
		return &ErrorResponse{Code: "description_too_long", Message: "description exceeds the maximum allowed length"}
	}
	return nil
}
