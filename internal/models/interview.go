package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is the posting an applicant interviews for. Only the description is
// consumed here; the listing itself is managed elsewhere.
type Job struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	RecruiterID string    `gorm:"not null;index" json:"recruiterId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

// Application links an applicant to a job.
type Application struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	JobID       string    `gorm:"not null;index" json:"jobId"`
	ApplicantID string    `gorm:"not null;index" json:"applicantId"`
	Job         Job       `gorm:"foreignKey:JobID" json:"job"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// InterviewSession tracks timing and the Q&A transcript for one application.
// StartTime is written once, on first access.
type InterviewSession struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ApplicationID string      `gorm:"uniqueIndex;not null;type:varchar(36)" json:"applicationId"`
	Application   Application `gorm:"foreignKey:ApplicationID" json:"-"`
	ResumeSummary string      `gorm:"type:text;not null" json:"resumeSummary"`
	StartTime     *time.Time  `json:"startTime"`
	QnAs          []QnAPair   `gorm:"foreignKey:SessionID" json:"qnas"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (s *InterviewSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// QnAPair is one question and its answer. An empty Answer marks the pending question.
type QnAPair struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SessionID  string     `gorm:"not null;index;type:varchar(36)" json:"-"`
	Question   string     `gorm:"type:text;not null" json:"question"`
	Answer     string     `gorm:"type:text;not null;default:''" json:"answer"`
	AnsweredAt *time.Time `json:"answeredAt,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
}

// IsPending reports whether the pair is still waiting for an answer.
func (q QnAPair) IsPending() bool {
	return q.Answer == ""
}

// TranscriptExport records that a finished session was written to an export file.
type TranscriptExport struct {
	gorm.Model
	SessionID  string    `gorm:"uniqueIndex;not null;type:varchar(36)" json:"session_id"`
	File       string    `gorm:"not null" json:"file"`
	ExportedAt time.Time `gorm:"not null" json:"exported_at"`
}

// AllModels lists every table owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{&Job{}, &Application{}, &InterviewSession{}, &QnAPair{}, &TranscriptExport{}}
}
